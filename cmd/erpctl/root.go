package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/erp-documentos/pkg/config"
	"github.com/jhoicas/erp-documentos/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "erpctl",
	Short: "Utilidades de operación del núcleo de documentos ERP",
	Long: `erpctl agrupa las tareas de operación del servicio de documentos:
aplicar migraciones, cargar datos maestros, emitir tokens de prueba y
calcular el desglose de impuestos de un conjunto de líneas.

La configuración se lee igual que en la API (variables de entorno,
.env o config.env).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		cfg = c
		log = logger.New(logger.Config{Env: "development", Level: c.App.LogLevel, Output: os.Stderr})
		return nil
	},
}

// Execute ejecuta el comando raíz y termina con código 1 si falla.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Error().Err(err).Str("command", os.Args[0]).Msg("comando fallido")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
