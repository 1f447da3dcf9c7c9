package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/felixbrock/mochagen/internal/app"
	"github.com/felixbrock/mochagen/internal/component"
	"github.com/felixbrock/mochagen/internal/config"
	"github.com/felixbrock/mochagen/internal/persistence"
	"github.com/felixbrock/mochagen/internal/prompt"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"
)

func main() {
	configPath := os.Getenv("MOCHAGEN_CONFIG")
	if configPath == "" {
		configPath = "mochagen.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}

	err = cfg.Validate()
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}

	snippetRepo, err := persistence.NewSnippetRepo(cfg.SnippetFile)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}

	oaiRepo := persistence.OpenAIRepo{
		BaseHeaders: []string{
			"Content-Type:application/json",
			fmt.Sprintf("Authorization: Bearer %s", cfg.OAIApiKey)},
		BaseUrl:   "https://api.openai.com/v1",
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Samples:   cfg.Samples,
		Limiter:   rate.NewLimiter(rate.Limit(2), 4),
	}

	runnerRepo := persistence.RunnerRepo{
		BaseHeaders: []string{"Content-Type:application/json"},
		BaseUrl:     cfg.RunnerUrl,
	}

	collectorRepo := persistence.NewCollectorRepo()

	generator := app.Generator{
		ModelRepo:     oaiRepo,
		ValidatorRepo: runnerRepo,
		CollectorRepo: collectorRepo,
		SnippetRepo:   snippetRepo,
		TemplateRepo:  persistence.TemplateRepo{Dir: cfg.TemplateDir},
		Temperatures:  cfg.Temperatures,
		PromptOpts: prompt.Options{
			TemplateName:      cfg.PromptTemplate,
			RetryTemplateName: cfg.RetryTemplate},
	}

	if cfg.PHApiKey != "" {
		generator.EventRepo = persistence.PHRepo{
			BaseHeaders: []string{"Content-Type:application/json"},
			ApiKey:      cfg.PHApiKey}
	}

	componentBuilder := app.ComponentBuilder{
		Index:   component.Index,
		Loading: component.Loading,
		Report:  component.Report,
		Error:   component.Error,
	}

	a := app.App{
		Generator:        generator,
		ReportRepo:       collectorRepo,
		ComponentBuilder: componentBuilder,
		Config:           app.Config{Port: cfg.Port, Temperatures: cfg.Temperatures},
	}

	err = a.Start()
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}
}
