package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/pkg/client"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the saved session",
	Long: `Asks the server to verify the saved session token and prints its claims.
Run 'animeko login' first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		me, correlation, err := cli.Me(cmd.Context())
		if err != nil {
			if errors.Is(err, client.ErrInvalidSession) {
				log.Warn().Msg("not logged in or session expired, run 'animeko login'")
			}
			return logError(err, correlation, "failed to verify session")
		}

		printKV := func(key string, val any) {
			fmt.Printf("  %-22s %v\n", faint(key)+":", val)
		}

		fmt.Println(bold("\n── Session ──"))
		printKV("User ID", bold(me.UserID))
		printKV("Provider", me.Provider)
		printKV("Issuer", me.Issuer)
		printKV("Audience", strings.Join(me.Audience, ", "))
		printKV("Issued", me.IssuedAt.Local().Format(time.RFC1123))
		printKV("Expires", me.ExpiresAt.Local().Format(time.RFC1123)+" "+humanUntil(me.ExpiresAt))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
