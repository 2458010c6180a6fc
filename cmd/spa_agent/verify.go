package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/toolchain"
	"github.com/jonathan/spa-builder/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <project>",
	Short: "Serve an existing project and run the browser checks once",
	Long: `Starts the Vite dev server for an existing project and runs the full
browser verification (compile overlay, render mount, console errors) without
repairing anything. Useful for checking a site after manual edits.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyCmd,
}

var (
	verifyConfigPath string
	verifyWorkspace  string
	verifyVerbose    bool
)

func init() {
	verifyCmd.Flags().StringVar(&verifyConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	verifyCmd.Flags().StringVarP(&verifyWorkspace, "workspace", "w", "", "Root directory for generated projects")
	verifyCmd.Flags().BoolVarP(&verifyVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(verifyCmd)
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, verifyConfigPath, "", verifyWorkspace, "", "", verifyVerbose)
	if err != nil {
		return err
	}

	proj, err := project.Open(cfg.WorkspaceDir, args[0])
	if err != nil {
		return err
	}

	runner := toolchain.NewRunner(proj.Dir)
	runner.InstallTimeout = cfg.InstallTimeout()
	if err := runner.EnsureDeps(ctx); err != nil {
		return fmt.Errorf("dependency install failed: %w", err)
	}

	sup := &toolchain.Supervisor{}
	defer sup.Stop()
	server, err := sup.Restart(ctx, runner, cfg.DevPort)
	if err != nil {
		return fmt.Errorf("starting dev server failed: %w", err)
	}

	v := verify.NewVerifier(server.URL())
	v.ProjectDir = proj.Dir
	v.ReadyTimeout = cfg.VerifyTimeout()

	failures := v.Run(ctx)
	if len(failures) == 0 {
		fmt.Printf("✅ All browser checks passed for %s (%s)\n", proj.Name, server.URL())
		return nil
	}

	fmt.Printf("Found %d issue(s) in %s:\n", len(failures), proj.Name)
	for _, failure := range failures {
		fmt.Printf("  ✗ %s\n", failure)
	}
	return fmt.Errorf("verification failed")
}
