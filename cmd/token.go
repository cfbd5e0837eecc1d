package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/token"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and inspect session tokens locally",
	Long: `Works directly with the keys of an Animeko server config, without a running server.
Useful for debugging and for issuing tokens to service accounts.`,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	f.bindConfigFlag(tokenCmd.PersistentFlags())
}

func localTokenPair() (*token.Issuer, *token.Verifier, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	keys, err := token.LoadKeySet(cfg.Keys)
	if err != nil {
		return nil, nil, err
	}
	opts := token.Options{
		Issuer:   cfg.Session.Issuer,
		Audience: cfg.Session.Audience,
		Leeway:   cfg.Session.Leeway,
	}
	issuer, err := token.NewIssuer(keys, opts)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := token.NewVerifier(keys, opts)
	if err != nil {
		return nil, nil, err
	}
	return issuer, verifier, nil
}
