package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/spa-builder/internal/observability"
	"github.com/jonathan/spa-builder/internal/project"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated projects in the workspace",
	RunE:  runListCmd,
}

var (
	listConfigPath string
	listWorkspace  string
)

func init() {
	listCmd.Flags().StringVar(&listConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	listCmd.Flags().StringVarP(&listWorkspace, "workspace", "w", "", "Root directory for generated projects")

	rootCmd.AddCommand(listCmd)
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, listConfigPath, "", listWorkspace, "", "", false)
	if err != nil {
		return err
	}

	infos, err := project.ListProjects(cfg.WorkspaceDir)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintProjects(infos)
	return nil
}
