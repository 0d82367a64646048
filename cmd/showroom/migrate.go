package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arawak/showroom/internal/config"
	"github.com/arawak/showroom/internal/store"
	"github.com/arawak/showroom/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Open creates the database outside production.
			db, err := store.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			db.Close()

			out := cmd.OutOrStdout()
			switch direction {
			case "up":
				err = migrations.Up(cfg.Database.DSN)
			case "down":
				err = migrations.Down(cfg.Database.DSN)
			case "version":
				v, dirty, verr := migrations.Version(cfg.Database.DSN)
				if verr != nil {
					return fmt.Errorf("migration version: %w", verr)
				}
				fmt.Fprintf(out, "version %d (dirty: %t)\n", v, dirty)
				return nil
			}
			if err != nil {
				return fmt.Errorf("migration error: %w", err)
			}
			fmt.Fprintf(out, "migrations %s complete\n", direction)
			return nil
		},
	}
	return cmd
}
