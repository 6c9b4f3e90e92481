package main

import (
	"github.com/jhoicas/erp-documentos/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Aplica o revierte el esquema de base de datos",
	Long: `Aplica todas las migraciones pendientes (up) o revierte la última (down).
Usa DATABASE_URL o DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME.`,
	Example: `  erpctl migrate up
  erpctl migrate down`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return postgres.Migrate(cfg.DB.ConnectionString(), args[0], log.Component("migrate"))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
