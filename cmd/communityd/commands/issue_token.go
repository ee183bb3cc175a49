package commands

import (
	"errors"
	"fmt"

	"community-backend/internal/auth"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	tokenUID   string
	tokenAdmin bool
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a signed bearer token for a user id",
	Long: `Print a signed bearer token for a user id, for local testing.

The admin flag only sets an informational claim; moderation rights come from
the stored user record.

Examples:
  communityd issue-token --uid 66c6248b98c56c39f018e7d2
  communityd issue-token --uid 66c6248b98c56c39f018e7d2 --admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}
		if _, err := bson.ObjectIDFromHex(tokenUID); err != nil {
			return fmt.Errorf("--uid must be a 24-character hex id: %w", err)
		}
		tok, err := auth.NewHMAC(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL).Issue(tokenUID, tokenAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueTokenCmd)

	issueTokenCmd.Flags().StringVar(&tokenUID, "uid", "", "User id (hex ObjectID)")
	issueTokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "Set the admin claim")
	_ = issueTokenCmd.MarkFlagRequired("uid")
}
