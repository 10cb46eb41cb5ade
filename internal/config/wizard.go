package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard interactively collects a configuration from the operator.
// Every answer defaults to the current value of cfg.
func RunWizard(cfg *Config) (*Config, error) {
	fmt.Println("Set up bizmate. Press Enter to accept the suggested value.")
	fmt.Println()

	out := *cfg

	providerSelect := promptui.Select{
		Label: "LLM provider",
		Items: []string{string(ProviderAnthropic), string(ProviderOpenAI), string(ProviderOllama)},
	}
	_, provider, err := providerSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("provider prompt: %w", err)
	}
	out.Provider = ProviderType(provider)

	model, err := ask("Model", DefaultModel(out.Provider))
	if err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}
	out.Model = model

	companyName, err := ask("Company name", out.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("company name prompt: %w", err)
	}
	out.CompanyName = companyName

	operator, err := ask("Operator id", out.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("operator prompt: %w", err)
	}
	out.OperatorID = operator

	dbPath, err := ask("Database path", out.DBPath)
	if err != nil {
		return nil, fmt.Errorf("db path prompt: %w", err)
	}
	out.DBPath = dbPath

	timeout, err := ask("LLM timeout (seconds)", strconv.Itoa(out.LLMTimeoutSecs))
	if err != nil {
		return nil, fmt.Errorf("timeout prompt: %w", err)
	}
	secs, err := strconv.Atoi(timeout)
	if err != nil {
		return nil, fmt.Errorf("timeout must be a number: %w", err)
	}
	out.LLMTimeoutSecs = secs

	if envVar := APIKeyEnvVar(out.Provider); envVar != "" {
		fmt.Printf("\nRemember to export %s before running recipes.\n", envVar)
	}

	return &out, nil
}

// ask displays a prompt with a default and returns the user's input.
func ask(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
	}
	return p.Run()
}
