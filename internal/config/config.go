package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Error signals a setup defect (missing key, unresolvable template) as opposed
// to a model or validation outcome. Callers surface it instead of exiting.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error on %s: %s", e.Field, e.Msg)
}

type Config struct {
	Port           string    `yaml:"port"`
	Model          string    `yaml:"model"`
	MaxTokens      int       `yaml:"max_tokens"`
	Samples        int       `yaml:"samples"`
	Temperatures   []float64 `yaml:"temperatures"`
	TemplateDir    string    `yaml:"template_dir"`
	PromptTemplate string    `yaml:"prompt_template"`
	RetryTemplate  string    `yaml:"retry_template"`
	RunnerUrl      string    `yaml:"runner_url"`
	SnippetFile    string    `yaml:"snippet_file"`
	OAIApiKey      string    `yaml:"-"`
	PHApiKey       string    `yaml:"-"`
}

func defaults() Config {
	return Config{
		Port:           "8000",
		Model:          "gpt-3.5-turbo-instruct",
		MaxTokens:      512,
		Samples:        5,
		Temperatures:   []float64{0.0, 0.5, 1.0},
		TemplateDir:    "templates",
		PromptTemplate: "generate.tmpl",
		RetryTemplate:  "retry.tmpl",
	}
}

// Load reads the optional yaml config at path and merges env vars on top.
// A missing file is fine; defaults apply.
func Load(path string) (*Config, error) {
	config := defaults()

	content, err := os.ReadFile(path)
	if err == nil {
		err = yaml.Unmarshal(content, &config)
		if err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if port := os.Getenv("GOPORT"); port != "" {
		config.Port = port
	}
	config.OAIApiKey = os.Getenv("OAI_API_KEY")
	config.PHApiKey = os.Getenv("PH_API_KEY")

	return &config, nil
}

func (c *Config) Validate() error {
	if c.OAIApiKey == "" {
		return &Error{Field: "OAI_API_KEY", Msg: "environment variable not set"}
	}
	if c.RunnerUrl == "" {
		return &Error{Field: "runner_url", Msg: "no test runner endpoint configured"}
	}
	if c.PromptTemplate == "" || c.RetryTemplate == "" {
		return &Error{Field: "prompt_template", Msg: "both prompt and retry template names are required"}
	}
	if len(c.Temperatures) == 0 {
		return &Error{Field: "temperatures", Msg: "at least one sampling temperature is required"}
	}
	return nil
}
