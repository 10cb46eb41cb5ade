package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level bizmate configuration, corresponding to .bizmate.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	DBPath         string       `yaml:"db_path" koanf:"db_path"`
	CompanyName    string       `yaml:"company_name" koanf:"company_name"`
	OperatorID     string       `yaml:"operator_id" koanf:"operator_id"`
	LLMTimeoutSecs int          `yaml:"llm_timeout_secs" koanf:"llm_timeout_secs"`
	RepairAttempts int          `yaml:"repair_attempts" koanf:"repair_attempts"`
	RateLimitRPM   int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	ListenAddr     string       `yaml:"listen_addr" koanf:"listen_addr"`
}
