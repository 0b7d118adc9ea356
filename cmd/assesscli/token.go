package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"career-assess/internal/service"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development access token for the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		name, _ := cmd.Flags().GetString("name")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}
		issuer := os.Getenv("JWT_ISSUER")
		if issuer == "" {
			issuer = "career-portal"
		}

		token, err := service.NewJWTService(secret, issuer, ttl).IssueAccessToken(userID, name)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("name", "", "Display name claim")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
}
