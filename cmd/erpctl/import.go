package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var seedPartiesCmd = &cobra.Command{
	Use:   "parties [terceros.csv]",
	Short: "Importa terceros desde un CSV exportado de otro ERP",
	Long: `Columnas (separadas por ';'): nombre;nif;recargo[;id]
recargo admite s/si/1/true. La primera fila se ignora si es cabecera.
Los ERP antiguos suelen exportar en ISO-8859-1 o Windows-1252: usar --encoding.`,
	Example: `  erpctl seed parties --company c1 terceros.csv
  erpctl seed parties --company c1 --encoding latin1 export_clientes.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSeedParties,
}

func init() {
	seedCmd.AddCommand(seedPartiesCmd)

	seedPartiesCmd.Flags().String("encoding", "utf8", "Codificación: utf8, latin1 o windows1252")
	seedPartiesCmd.Flags().Bool("dry-run", false, "Validar sin escribir en la base de datos")
}

func runSeedParties(cmd *cobra.Command, args []string) error {
	company, _ := cmd.Flags().GetString("company")
	enc, _ := cmd.Flags().GetString("encoding")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()

	r, err := decodeReader(f, enc)
	if err != nil {
		return err
	}
	parties, err := readParties(r, company, time.Now().UTC())
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d terceros válidos\n", len(parties))
		return nil
	}

	err = withRepos(cmd, func(ctx context.Context, r documents.Repos) error {
		for _, p := range parties {
			if err := r.Parties.Create(ctx, p); err != nil {
				return fmt.Errorf("tercero %q: %w", p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("company_id", company).Int("count", len(parties)).Msg("terceros importados")
	return nil
}

func decodeReader(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(enc, "-", "")) {
	case "", "utf8":
		return r, nil
	case "latin1", "iso88591":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %q", enc)
	}
}

// readParties una fila por tercero; la cabecera se detecta por la columna nif.
func readParties(r io.Reader, companyID string, now time.Time) ([]*entity.Party, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []*entity.Party
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && len(rec) > 1 && strings.EqualFold(strings.TrimSpace(rec[1]), "nif") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 3 columnas", line)
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, fmt.Errorf("línea %d: nombre vacío", line)
		}
		id := uuid.New().String()
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			id = strings.TrimSpace(rec[3])
		}
		out = append(out, &entity.Party{
			ID:               id,
			CompanyID:        companyID,
			Name:             name,
			TaxID:            strings.TrimSpace(rec[1]),
			SurchargeApplies: parseYes(rec[2]),
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}
	return out, nil
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "si", "sí", "1", "true", "x":
		return true
	}
	return false
}
