package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"
)

// starterConfig is the document written by `valet init`.
type starterConfig struct {
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
}

const starterTemplate = `{{.config.system_prompt}}
`

// runInit asks for the starter settings and writes valet.yaml plus a system
// prompt template into dir. It refuses to overwrite an existing config.
func runInit(dir string) error {
	configPath := filepath.Join(dir, "valet.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	model := "anthropic/claude-sonnet-4"
	temperature := "0.7"
	maxTokens := "1024"
	systemPrompt := "You are a helpful personal assistant."

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Model").
			Description("OpenRouter model identifier").
			Value(&model),
		huh.NewInput().
			Title("Temperature").
			Value(&temperature).
			Validate(validateFloat),
		huh.NewInput().
			Title("Max tokens").
			Value(&maxTokens).
			Validate(validatePositiveInt),
		huh.NewText().
			Title("System prompt").
			Description("Leave empty to send no system message").
			Value(&systemPrompt),
	))
	if err := form.Run(); err != nil {
		return err
	}

	temp, _ := strconv.ParseFloat(strings.TrimSpace(temperature), 64)
	tokens, _ := strconv.Atoi(strings.TrimSpace(maxTokens))

	cfg := starterConfig{
		Model:        strings.TrimSpace(model),
		Temperature:  temp,
		MaxTokens:    tokens,
		SystemPrompt: strings.TrimSpace(systemPrompt),
	}

	if err := writeStarter(dir, cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s and %s\n", configPath, filepath.Join(dir, "system_prompt.tmpl"))
	return nil
}

// writeStarter writes the config document and the system prompt template.
func writeStarter(dir string, cfg starterConfig) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "valet.yaml"), data, 0o644); err != nil { //nolint:gosec // config file, not a secret
		return fmt.Errorf("write config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "system_prompt.tmpl"), []byte(starterTemplate), 0o644); err != nil { //nolint:gosec // template file
		return fmt.Errorf("write template: %w", err)
	}

	return nil
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive integer")
	}
	return nil
}
