package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/postgres"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Carga datos maestros (terceros, series y formas de pago) en PostgreSQL",
}

var seedPartyCmd = &cobra.Command{
	Use:     "party",
	Short:   "Alta de cliente o proveedor",
	Example: `  erpctl seed party --company c1 --name "Ferretería Sol" --tax-id B12345678 --surcharge`,
	RunE:    runSeedParty,
}

var seedSeriesCmd = &cobra.Command{
	Use:     "series",
	Short:   "Alta o actualización de una serie de numeración",
	Example: `  erpctl seed series --company c1 --code A --name "Serie general" --tax 21 --withholding 0`,
	RunE:    runSeedSeries,
}

var seedTermCmd = &cobra.Command{
	Use:   "term",
	Short: "Alta de forma de pago con sus tramos",
	Long: `Los tramos se indican como días:porcentaje separados por comas.
Los porcentajes deben sumar 100.`,
	Example: `  erpctl seed term --company c1 --name "30/60" --tramos 30:50,60:50`,
	RunE:    runSeedTerm,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedPartyCmd, seedSeriesCmd, seedTermCmd)

	seedCmd.PersistentFlags().String("company", "", "ID de empresa (obligatorio)")
	_ = seedCmd.MarkPersistentFlagRequired("company")

	seedPartyCmd.Flags().String("id", "", "ID del tercero (por defecto UUID)")
	seedPartyCmd.Flags().String("name", "", "Razón social")
	seedPartyCmd.Flags().String("tax-id", "", "NIF/CIF")
	seedPartyCmd.Flags().Bool("surcharge", false, "Sujeto a recargo de equivalencia")
	_ = seedPartyCmd.MarkFlagRequired("name")

	seedSeriesCmd.Flags().String("code", "", "Código de serie")
	seedSeriesCmd.Flags().String("name", "", "Descripción")
	seedSeriesCmd.Flags().String("tax", "21", "IVA por defecto (%)")
	seedSeriesCmd.Flags().String("withholding", "0", "Retención (%)")
	seedSeriesCmd.Flags().Bool("inactive", false, "Crear la serie desactivada")
	_ = seedSeriesCmd.MarkFlagRequired("code")

	seedTermCmd.Flags().String("id", "", "ID de la forma de pago (por defecto UUID)")
	seedTermCmd.Flags().String("name", "", "Nombre")
	seedTermCmd.Flags().String("tramos", "0:100", "Tramos días:porcentaje")
	_ = seedTermCmd.MarkFlagRequired("name")
}

// withRepos abre el pool, ejecuta fn en una transacción y cierra.
func withRepos(cmd *cobra.Command, fn func(ctx context.Context, r documents.Repos) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.NewTxRunner(pool).RunDocuments(ctx, func(r documents.Repos) error { return fn(ctx, r) })
}

func runSeedParty(cmd *cobra.Command, args []string) error {
	company, _ := cmd.Flags().GetString("company")
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	taxID, _ := cmd.Flags().GetString("tax-id")
	surcharge, _ := cmd.Flags().GetBool("surcharge")
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now().UTC()
	p := &entity.Party{
		ID: id, CompanyID: company, Name: name, TaxID: taxID,
		SurchargeApplies: surcharge, CreatedAt: now, UpdatedAt: now,
	}
	if err := withRepos(cmd, func(ctx context.Context, r documents.Repos) error { return r.Parties.Create(ctx, p) }); err != nil {
		return err
	}
	log.Info().Str("party_id", p.ID).Bool("surcharge", surcharge).Msg("tercero creado")
	fmt.Fprintln(cmd.OutOrStdout(), p.ID)
	return nil
}

func runSeedSeries(cmd *cobra.Command, args []string) error {
	company, _ := cmd.Flags().GetString("company")
	code, _ := cmd.Flags().GetString("code")
	name, _ := cmd.Flags().GetString("name")
	taxStr, _ := cmd.Flags().GetString("tax")
	whStr, _ := cmd.Flags().GetString("withholding")
	inactive, _ := cmd.Flags().GetBool("inactive")

	taxRate, err := decimal.NewFromString(taxStr)
	if err != nil {
		return fmt.Errorf("--tax: %w", err)
	}
	withholding, err := decimal.NewFromString(whStr)
	if err != nil {
		return fmt.Errorf("--withholding: %w", err)
	}
	if withholding.IsNegative() || withholding.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("--withholding fuera de rango: %s", whStr)
	}

	s := &entity.NumberingSeries{
		CompanyID: company, Code: strings.TrimSpace(code), Name: name, Active: !inactive,
		DefaultTaxRate: taxRate, DefaultWithholdingRate: withholding,
	}
	if err := withRepos(cmd, func(ctx context.Context, r documents.Repos) error { return r.Series.Create(ctx, s) }); err != nil {
		return err
	}
	log.Info().Str("series", s.Code).Bool("active", s.Active).Msg("serie guardada")
	return nil
}

func runSeedTerm(cmd *cobra.Command, args []string) error {
	company, _ := cmd.Flags().GetString("company")
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	raw, _ := cmd.Flags().GetString("tramos")

	tramos, err := parseTramos(raw)
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.New().String()
	}
	pt := &entity.PaymentTerm{ID: id, CompanyID: company, Name: name, Tramos: tramos}
	if !pt.Valid() {
		return fmt.Errorf("tramos inválidos: los porcentajes deben sumar 100 y los días no ser negativos")
	}
	if err := withRepos(cmd, func(ctx context.Context, r documents.Repos) error { return r.PaymentTerms.Create(ctx, pt) }); err != nil {
		return err
	}
	log.Info().Str("term_id", pt.ID).Int("tramos", len(tramos)).Msg("forma de pago creada")
	fmt.Fprintln(cmd.OutOrStdout(), pt.ID)
	return nil
}

// parseTramos "30:50,60:50" -> tramos en el orden dado.
func parseTramos(raw string) ([]entity.Tramo, error) {
	var out []entity.Tramo
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		d, p, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("tramo %q: se espera días:porcentaje", item)
		}
		days, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil {
			return nil, fmt.Errorf("tramo %q: días: %w", item, err)
		}
		pct, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("tramo %q: porcentaje: %w", item, err)
		}
		out = append(out, entity.Tramo{Days: days, Percentage: pct})
	}
	return out, nil
}
