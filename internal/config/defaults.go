package config

// defaultModels maps each provider to its default model.
var defaultModels = map[ProviderType]string{
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOpenAI:    "gpt-4o",
	ProviderOllama:    "llama3",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderAnthropic,
		Model:          defaultModels[ProviderAnthropic],
		DBPath:         "bizmate.db",
		CompanyName:    "My Company",
		OperatorID:     "operator",
		LLMTimeoutSecs: 60,
		RepairAttempts: 2,
		RateLimitRPM:   30,
		ListenAddr:     ":8720",
	}
}

// DefaultModel returns the default model for the given provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderAnthropic]
}
