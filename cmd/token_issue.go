package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/core"
)

var (
	tokenIssueUser     string
	tokenIssueProvider string
	tokenIssueTTL      time.Duration
)

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a session token for an internal user id",
	Long: `Signs a session token with the configured signing key. The user id is not checked
against the identity store.`,
	Example: `  animeko token issue -c animeko.yaml --user 0b9f6c1e-... --ttl 1h`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer, _, err := localTokenPair()
		if err != nil {
			return err
		}

		tok, err := issuer.Issue(core.UserID(tokenIssueUser), tokenIssueProvider, tokenIssueTTL)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		log.Info().
			Str("user_id", tokenIssueUser).
			Time("expires_at", tok.Claims.ExpiresAt).
			Msg("Issued token")

		fmt.Println(tok.Value)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().StringVar(&tokenIssueUser, "user", "", "Internal user id to issue the token for")
	tokenIssueCmd.Flags().StringVar(&tokenIssueProvider, "provider", "", "Provider recorded in the token (optional)")
	tokenIssueCmd.Flags().DurationVar(&tokenIssueTTL, "ttl", time.Hour, "Lifetime of the token")

	_ = tokenIssueCmd.MarkFlagRequired("user")
}
