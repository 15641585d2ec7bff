package main

import (
	"fmt"

	"yatube/internal/config"
	"yatube/internal/database"

	"github.com/spf13/cobra"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: withPostgres(func(cmd *cobra.Command, db *database.PostgresDB) error {
		return db.MigrationsUp()
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: withPostgres(func(cmd *cobra.Command, db *database.PostgresDB) error {
		return db.MigrationsDown(downSteps)
	}),
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: withPostgres(func(cmd *cobra.Command, db *database.PostgresDB) error {
		version, dirty, err := db.MigrationVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
		return nil
	}),
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back, 0 for all")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withPostgres(fn func(cmd *cobra.Command, db *database.PostgresDB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Type != config.DBTypePostgres {
			return fmt.Errorf("migrations only apply to postgres, DB_TYPE is %q", cfg.Database.Type)
		}
		db, err := database.NewPostgresDB(cfg.Database.URI)
		if err != nil {
			return err
		}
		defer db.Close(cmd.Context())
		return fn(cmd, db)
	}
}
