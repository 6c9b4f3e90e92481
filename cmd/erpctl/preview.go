package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/application/dto"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/memory"
	"github.com/jhoicas/erp-documentos/pkg/money"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [lines.json|-]",
	Short: "Calcula el desglose de impuestos de un conjunto de líneas",
	Long: `Lee un JSON con el mismo formato que POST /api/documents/preview y
muestra la base, el IVA y el recargo por tipo, con los totales.
No accede a la base de datos.`,
	Example: `  erpctl preview lineas.json
  echo '{"surcharge_applies":true,"lines":[{"quantity":"2","unit_price":"10","tax_rate":"21"}]}' | erpctl preview -`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Bool("surcharge", false, "Forzar recargo de equivalencia")
	previewCmd.Flags().Bool("json", false, "Salida en JSON")
}

func runPreview(cmd *cobra.Command, args []string) error {
	forceSurcharge, _ := cmd.Flags().GetBool("surcharge")
	asJSON, _ := cmd.Flags().GetBool("json")

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("abrir %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	var in dto.PreviewRequest
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("JSON inválido: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(in); err != nil {
		return fmt.Errorf("líneas inválidas: %w", err)
	}

	settings, err := documents.NewSettings(cfg.ERP.DefaultSeries, cfg.ERP.SurchargeRates, cfg.ERP.NumberingRetries, cfg.ERP.AutoReceipts)
	if err != nil {
		return err
	}
	uc := documents.NewUseCase(memory.NewStore(), settings, log.Component("preview"))

	lines := make([]documents.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, documents.LineInput{
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			TaxRate:     l.TaxRate,
		})
	}
	b, err := uc.TaxBreakdown(lines, in.SurchargeApplies || forceSurcharge)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	f, err := money.NewFormatter(cfg.ERP.DisplayLocale, cfg.ERP.Currency)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "IVA %\tBase\tCuota\tRE %\tRecargo\tTotal\t")
	for _, g := range b.Groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			g.TaxRate.String(), f.Number(g.Base), f.Number(g.TaxAmount),
			g.SurchargeRate.String(), f.Number(g.SurchargeAmount), f.Number(g.Total))
	}
	fmt.Fprintf(w, "\t%s\t%s\t\t%s\t%s\t\n",
		f.Number(b.Base), f.Number(b.TaxTotal), f.Number(b.SurchargeTotal), f.Format(b.Total))
	return w.Flush()
}
