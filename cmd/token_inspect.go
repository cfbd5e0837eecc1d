package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/audit"
	"github.com/Yishiba/animeko/internal/core"
)

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect TOKEN",
	Short: "Verify a session token and show its claims",
	Long: `Verifies the token with the keys of the config and prints its header and claims.
Claims of rejected tokens are still shown, decoded without verification.

Pass "-" to read the token from stdin.`,
	Example: `  animeko token inspect -c animeko.yaml eyJhbGciOi...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readArg(args[0])
		if err != nil {
			return err
		}

		_, verifier, err := localTokenPair()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field", "Value"})

		claims, verifyErr := verifier.Verify(raw)
		status := green("valid")
		if verifyErr != nil {
			status = red(fmt.Sprintf("rejected (%s)", core.KindOf(verifyErr)))
		}
		t.AppendRow(table.Row{"Status", status})
		t.AppendRow(table.Row{"Fingerprint", faint(audit.Fingerprint(raw))})

		if verifyErr == nil {
			appendClaims(t, claims)
		} else {
			log.Debug().Err(verifyErr).Msg("token rejected")
			appendUnverified(t, raw)
		}

		s := table.StyleRounded
		s.Format.Header = text.FormatDefault
		t.SetStyle(s)
		t.Render()

		if verifyErr != nil {
			return logError(verifyErr, "", "token is not valid")
		}
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
}

func appendClaims(t table.Writer, c *core.Claims) {
	t.AppendRow(table.Row{"User ID", bold(c.UserID)})
	t.AppendRow(table.Row{"Provider", c.Provider})
	t.AppendRow(table.Row{"Issuer", c.Issuer})
	t.AppendRow(table.Row{"Audience", strings.Join(c.Audience, ", ")})
	t.AppendRow(table.Row{"Issued", c.IssuedAt.Local().Format(time.RFC3339)})
	t.AppendRow(table.Row{"Expires", c.ExpiresAt.Local().Format(time.RFC3339) + " " + humanUntil(c.ExpiresAt)})
	t.AppendRow(table.Row{"Token ID", faint(c.TokenID)})
}

// appendUnverified shows whatever can be decoded from a rejected token.
func appendUnverified(t table.Writer, raw string) {
	claims := jwt.MapClaims{}
	tok, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		t.AppendRow(table.Row{"Decoded", faint("(not a JWT)")})
		return
	}
	t.AppendRow(table.Row{"Algorithm", tok.Method.Alg()})
	if kid, ok := tok.Header["kid"].(string); ok {
		t.AppendRow(table.Row{"Key ID", kid})
	}
	for _, name := range []string{"userId", "provider", "iss", "aud", "iat", "exp", "jti"} {
		v, ok := claims[name]
		if !ok {
			continue
		}
		if ts, ok := v.(float64); ok && (name == "iat" || name == "exp") {
			v = time.Unix(int64(ts), 0).Local().Format(time.RFC3339)
		}
		t.AppendRow(table.Row{faint(name), truncate(fmt.Sprint(v), 80)})
	}
}
