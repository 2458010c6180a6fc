package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/spa-builder/internal/pipeline"
)

var updateCmd = &cobra.Command{
	Use:   "update <project> <request>",
	Short: "Apply a natural-language change to an existing project",
	Long: `Classifies the change request (patch, modify or new feature), decides which
components it touches, regenerates them and re-verifies the page in the
browser. Example:

  spa_agent update coffee-landing "make the hero headline bigger"`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdateCmd,
}

var (
	updateConfigPath  string
	updateWorkspace   string
	updateAPIKey      string
	updateModel       string
	updateDatabaseURL string
	updateVerbose     bool
)

func init() {
	updateCmd.Flags().StringVar(&updateConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	updateCmd.Flags().StringVarP(&updateWorkspace, "workspace", "w", "", "Root directory for generated projects")
	updateCmd.Flags().StringVar(&updateAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	updateCmd.Flags().StringVar(&updateModel, "model", "", "Gemini model name")
	updateCmd.Flags().StringVar(&updateDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	updateCmd.Flags().BoolVarP(&updateVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(updateCmd)
}

func runUpdateCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	projectName, request := args[0], args[1]

	cfg, err := resolveConfig(cmd, updateConfigPath, updateAPIKey, updateWorkspace, updateModel, updateDatabaseURL, updateVerbose)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	result, err := pipeline.RunUpdate(ctx, projectName, request, pipeline.Options{
		Cfg:      cfg,
		Client:   client,
		Database: database,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	printResult(result)
	return nil
}
