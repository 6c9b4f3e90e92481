package main

import (
	"fmt"

	"github.com/jhoicas/erp-documentos/pkg/jwt"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Emite un token JWT firmado con JWT_SECRET",
	Example: `  erpctl token --company c1 --user u1 --role contable
  erpctl token --company c1 --user admin --role admin --minutes 480`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("company", "", "ID de empresa (obligatorio)")
	tokenCmd.Flags().String("user", "cli", "ID de usuario")
	tokenCmd.Flags().String("role", jwt.RoleSales, "Rol: admin, contable o comercial")
	tokenCmd.Flags().Int("minutes", 0, "Validez en minutos (0 = JWT_EXPIRATION_MINUTES)")
	_ = tokenCmd.MarkFlagRequired("company")
}

func runToken(cmd *cobra.Command, args []string) error {
	company, _ := cmd.Flags().GetString("company")
	user, _ := cmd.Flags().GetString("user")
	role, _ := cmd.Flags().GetString("role")
	minutes, _ := cmd.Flags().GetInt("minutes")

	switch role {
	case jwt.RoleAdmin, jwt.RoleAccountant, jwt.RoleSales:
	default:
		return fmt.Errorf("rol desconocido: %q", role)
	}
	if minutes <= 0 {
		minutes = cfg.JWT.Expiration
	}

	token, err := jwt.Generate(cfg.JWT.Secret, user, company, role, cfg.JWT.Issuer, minutes)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
