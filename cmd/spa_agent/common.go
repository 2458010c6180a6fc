package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/spa-builder/internal/config"
	"github.com/jonathan/spa-builder/internal/db"
	"github.com/jonathan/spa-builder/internal/llm"
)

// resolveConfig loads the optional config file, merges defaults and applies
// the flags every pipeline command shares. Flags explicitly set on the
// command line win over config file values.
func resolveConfig(cmd *cobra.Command, configPath, apiKey, workspace, model, databaseURL string, verbose bool) (config.Config, error) {
	cfg := config.Defaults()

	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = loaded.MergeWithDefaults(cfg)
		if verbose {
			fmt.Printf("Loaded config from: %s\n", configPath)
		}
	}

	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if cmd.Flags().Changed("workspace") {
		cfg.WorkspaceDir = workspace
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = model
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

// newClient builds the Gemini client the pipeline generates with.
func newClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not set (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}
	client, err := llm.NewGeminiClient(ctx, cfg.Model, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return client, nil
}

// openDatabase connects to Postgres when a URL is configured. Persistence is
// optional; a missing URL just disables run history.
func openDatabase(ctx context.Context, cfg config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
