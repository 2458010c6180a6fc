// Package main provides the entry point for the SPA builder agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spa_agent",
	Short: "Self-healing single-page application builder",
	Long:  "spa_agent generates React/Vite/Tailwind sites from a build specification, verifies them in a real browser and keeps repairing broken components until the page renders.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
