package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flashstudy/internal/config"
	"flashstudy/internal/database"
	"flashstudy/internal/importer"
	"flashstudy/internal/logging"
	"flashstudy/internal/security"
	"flashstudy/internal/srs"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cardtool",
		Short:        "Maintenance commands for the study database",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(importCmd(), tokenCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	var (
		userID   int64
		deckName string
		color    string
		sheet    string
		startRow int
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import cards (front, back, tags columns) into a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.RunMigrations(cmd.Context(), log); err != nil {
				return err
			}

			ease := srs.NewScheduler(cfg.SchedulerConfig()).InitialEase()
			res, err := importer.New(db, ease, log).ImportFile(cmd.Context(), args[0], importer.Config{
				UserID:    userID,
				DeckName:  deckName,
				DeckColor: color,
				SheetName: sheet,
				StartRow:  startRow,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deck %d (created: %t)\n", res.DeckID, res.DeckCreated)
			fmt.Fprintf(out, "Processed: %d, Created: %d, Skipped: %d\n", res.Processed, res.Created, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintln(out, "  "+e)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Owner user id (required)")
	cmd.Flags().StringVar(&deckName, "deck-name", "", "Deck to import into, created when missing (required)")
	cmd.Flags().StringVar(&color, "color", "", "Color for a newly created deck")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (default: first sheet)")
	cmd.Flags().IntVar(&startRow, "start-row", 2, "First data row, 1-based")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("deck-name")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not set")
			}
			token, err := security.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id to put in the token (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.RunMigrations(cmd.Context(), log)
		},
	}
}
