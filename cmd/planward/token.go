package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planward/planward/internal/config"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenAddUser string
var tokenAddDescription string

var tokenAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Mint an API token for a user and print it once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		token := uuid.NewString()
		_, err = db.Exec(
			`INSERT INTO api_tokens (token_hash, user_id, description, created_at) VALUES (?, ?, ?, ?)`,
			hashToken(token), tokenAddUser, tokenAddDescription, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("storing token: %w", err)
		}

		// Only the hash is stored; this is the one chance to copy the token.
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenAddCmd.Flags().StringVar(&tokenAddUser, "user", "", "user ID the token authenticates as")
	tokenAddCmd.Flags().StringVar(&tokenAddDescription, "description", "", "optional description")
	_ = tokenAddCmd.MarkFlagRequired("user")
	tokenCmd.AddCommand(tokenAddCmd)
}
