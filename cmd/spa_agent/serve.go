package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/spa-builder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API: login, streamed builds and updates over Server-Sent
Events, project listings and run history. Requires JWT_SECRET and
ADMIN_PASSWORD_HASH in the environment; see the hash-password command.`,
	RunE: runServeCmd,
}

var (
	serveConfigPath  string
	servePort        int
	serveWorkspace   string
	serveAPIKey      string
	serveModel       string
	serveDatabaseURL string
	serveVerbose     bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port for the API server")
	serveCmd.Flags().StringVarP(&serveWorkspace, "workspace", "w", "", "Root directory for generated projects")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Gemini model name")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, serveConfigPath, serveAPIKey, serveWorkspace, serveModel, serveDatabaseURL, serveVerbose)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	srv, err := server.New(server.Config{
		Port:        servePort,
		DatabaseURL: cfg.DatabaseURL,
		Pipeline:    cfg,
		Client:      client,
	})
	if err != nil {
		return err
	}
	return srv.Start()
}
