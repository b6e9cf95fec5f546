package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flashstudy/internal/config"
	"flashstudy/internal/database"
	"flashstudy/internal/logging"
	"flashstudy/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "backup",
		Short:        "FlashStudy database backup tool",
		SilenceUsage: true,
		Long: `Export the study database to a JSON file or restore it from one.

Environment Variables:
  STUDY_DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)
  STUDY_DATABASE_PATH    SQLite database path (default: ./flashstudy.db)
  STUDY_DATABASE_URL     PostgreSQL or MySQL connection URL`,
	}
	rootCmd.AddCommand(exportCmd(), importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, opens the database and makes sure the schema is current
func setup(cmd *cobra.Command) (*database.DB, *service.BackupService, logrus.FieldLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(cmd.Context(), log); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, service.NewBackupService(db, log), log, nil
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export database to JSON file",
		Example: `  backup export
  backup export --output mybackup.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, backups, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			log.WithField("file", output).Info("Exporting database")
			if err := backups.Export(cmd.Context(), f); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if info, err := f.Stat(); err == nil {
				log.WithField("size_mb", fmt.Sprintf("%.2f", float64(info.Size())/1024/1024)).Info("Export complete")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func importCmd() *cobra.Command {
	var (
		input     string
		clearData bool
		assumeYes bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import database from JSON file",
		Example: `  # merge with existing data
  backup import --input backup.json

  # replace all data
  backup import --input backup.json --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file %s: %w", input, err)
			}

			db, backups, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if clearData {
				if !assumeYes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
					log.Info("Import cancelled")
					return nil
				}
				log.Info("Clearing existing data...")
				if err := backups.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear database: %w", err)
				}
			}

			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			log.WithField("file", input).Info("Importing database")
			if err := backups.Import(cmd.Context(), f); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			log.Info("Import complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file path (required)")
	cmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before import (WARNING: destructive)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
