package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonathan/spa-builder/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash an admin password for the API server",
	Long: `Reads a password from the terminal and prints its bcrypt hash. Put the
result in ADMIN_PASSWORD_HASH for the serve command.`,
	RunE: runHashPasswordCmd,
}

var hashCost int

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 12, "bcrypt cost (10-15)")
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPasswordCmd(_ *cobra.Command, _ []string) error {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) < 8 {
		return fmt.Errorf("password too short: need at least 8 characters")
	}

	cfg := &config.AuthConfig{BcryptCost: hashCost}
	hash, err := cfg.HashPassword(string(password))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
