package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/spa-builder/internal/pipeline"
	"github.com/jonathan/spa-builder/internal/schemas"
	"github.com/jonathan/spa-builder/internal/toolchain"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate, verify and repair a site from a build spec",
	Long: `Runs the full generation pipeline: scaffold the Vite project, generate every
component with the model while npm installs in parallel, then verify the page
in a headless browser and repair broken components until it renders.

The build spec is a JSON document (see schemas/build_spec.schema.json).`,
	RunE: runBuildCmd,
}

var (
	buildConfigPath  string
	buildSpecPath    string
	buildWorkspace   string
	buildAPIKey      string
	buildModel       string
	buildDatabaseURL string
	buildVerbose     bool
	buildServe       bool
)

func init() {
	buildCmd.Flags().StringVar(&buildConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	buildCmd.Flags().StringVarP(&buildSpecPath, "spec", "s", "", "Path to build spec JSON file (required unless set in config)")
	buildCmd.Flags().StringVarP(&buildWorkspace, "workspace", "w", "", "Root directory for generated projects")
	buildCmd.Flags().StringVar(&buildAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	buildCmd.Flags().StringVar(&buildModel, "model", "", "Gemini model name")
	buildCmd.Flags().StringVar(&buildDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Print detailed debug information")
	buildCmd.Flags().BoolVar(&buildServe, "serve", false, "Keep the dev server running after the build until interrupted")

	rootCmd.AddCommand(buildCmd)
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, buildConfigPath, buildAPIKey, buildWorkspace, buildModel, buildDatabaseURL, buildVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("spec") {
		cfg.SpecPath = buildSpecPath
	}
	if cfg.SpecPath == "" {
		return fmt.Errorf("build spec not set (use --spec or the config file)")
	}

	specJSON, err := os.ReadFile(cfg.SpecPath)
	if err != nil {
		return fmt.Errorf("failed to read spec file %s: %w", cfg.SpecPath, err)
	}
	spec, err := schemas.ParseBuildSpec(string(specJSON))
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

	opts := pipeline.Options{
		Cfg:      cfg,
		Client:   client,
		Database: database,
		Verbose:  cfg.Verbose,
	}

	// With --serve the command owns the supervisor so the dev server
	// outlives the run.
	var sup *toolchain.Supervisor
	if buildServe {
		sup = &toolchain.Supervisor{}
		defer sup.Stop()
		opts.Server = sup
	}

	result, err := pipeline.RunBuild(ctx, spec, opts)
	if err != nil {
		return err
	}

	printResult(result)

	if buildServe {
		fmt.Printf("\nDev server running at %s — press Ctrl+C to stop.\n", result.URL)
		waitForInterrupt()
	}
	return nil
}

func printResult(result *pipeline.Result) {
	fmt.Printf("\nProject:  %s\n", result.ProjectName)
	fmt.Printf("Location: %s\n", result.ProjectDir)
	fmt.Printf("Status:   %s (%d verification attempt(s))\n", result.Status, result.Attempts)
	if result.URL != "" {
		fmt.Printf("URL:      %s\n", result.URL)
	}
	for _, failure := range result.Failures {
		fmt.Printf("  ✗ %s\n", failure)
	}
}

func waitForInterrupt() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
