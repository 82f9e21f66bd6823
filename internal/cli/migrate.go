package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/config"
	"github.com/Vroy4298/land-tax-system/internal/database"
	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *RootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Long:  "Connect with the DB_* environment variables and create the users and properties\ntables if they do not exist. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			log := logger.New(root.Env)
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := database.NewPostgresPool(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}

			log.Info("Schema up to date", map[string]interface{}{
				"host":     dbCfg.Host,
				"database": dbCfg.Name,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date on %s/%s\n", dbCfg.Host, dbCfg.Name)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}
