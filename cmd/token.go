package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wahaj323/quizengine/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for --user, for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		if cfg.Auth.Secret == "" {
			return errors.New("auth.secret is not set")
		}
		tok, err := api.NewAuth(cfg.Auth).Issue(cfg.User, role)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("role", api.RoleLearner, fmt.Sprintf("Role: %s or %s", api.RoleLearner, api.RoleTeacher))
}
