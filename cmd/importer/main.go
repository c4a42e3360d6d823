package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pm-dashboard/internal/database"
	"pm-dashboard/internal/importer"
	"pm-dashboard/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		file      string
		performer string
		dsn       string
		logLevel  string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Import projects from the legacy JSON export",
		Long: `Reads a JSON array exported from the old system, maps its Czech column
labels onto projects and upserts every record by its source code.
Running the same file again updates the existing rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), file, performer, dsn, logLevel, dryRun)
		},
	}

	_ = godotenv.Load()
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the JSON export")
	cmd.Flags().StringVar(&performer, "performer", "", "Email recorded as the import author")
	cmd.Flags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "Postgres DSN (default from DB_DSN)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Map and validate records without writing")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("performer")

	return cmd
}

func run(ctx context.Context, file, performer, dsn, logLevel string, dryRun bool) error {
	log, err := logger.New(logLevel, "local")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	records, err := importer.Parse(f)
	if err != nil {
		return err
	}
	log.Info("export loaded", zap.String("file", file), zap.Int("records", len(records)))

	if dryRun {
		im := importer.New(nil, nil, log)
		bad := 0
		for i, rec := range records {
			if _, _, err := im.Map(rec); err != nil {
				bad++
				log.Warn("record rejected", zap.Int("index", i), zap.Error(err))
			}
		}
		fmt.Printf("%d records, %d would be imported\n", len(records), len(records)-bad)
		return nil
	}

	if dsn == "" {
		return errors.New("database DSN is not set (use --dsn or DB_DSN)")
	}
	db, err := database.Open(dsn, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	rep, err := importer.New(db, nil, log).Run(ctx, filepath.Base(file), performer, records)
	if err != nil {
		return err
	}
	for _, s := range rep.Skipped {
		log.Warn("record skipped", zap.Int("index", s.Index), zap.String("reason", s.Reason))
	}
	if len(rep.Unknown) > 0 {
		log.Warn("unknown labels ignored", zap.Strings("labels", rep.Unknown))
	}
	fmt.Printf("%d records, %d imported, %d skipped\n", rep.Total, rep.Imported, len(rep.Skipped))
	return nil
}
