package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/cliconfig"
	"github.com/Yishiba/animeko/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login PROVIDER CREDENTIAL",
	Short: "Authenticate with an Animeko server",
	Long: `Exchanges a credential of an external identity provider (e.g., a Bangumi access token)
for an Animeko session token. The session token is saved locally to allow future
authenticated requests (like 'animeko whoami').

Pass "-" as CREDENTIAL to read it from stdin.`,
	Example: `  animeko login --server https://auth.example.com bangumi "$BGM_TOKEN"
  echo "$BGM_TOKEN" | animeko login bangumi -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := args[0]
		credential, err := readArg(args[1])
		if err != nil {
			return err
		}
		if credential == "" {
			return fmt.Errorf("credential cannot be empty")
		}

		server, err := f.Server()
		if err != nil {
			return err
		}

		log.Info().Msgf("Logging in at %q via provider %q...", server, provider)
		res, correlation, err := client.New(server).Login(cmd.Context(), provider, credential)
		if err != nil {
			return logError(err, correlation, "login failed")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.SetCredential(server, &cliconfig.Credential{
			Token:     res.Token,
			UserID:    res.UserID.String(),
			Provider:  provider,
			ExpiresAt: res.ExpiresAt,
		}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "login succeeded but could not save credentials")
		}

		name := res.DisplayName
		if name == "" {
			name = res.UserID.String()
		}
		if res.NewUser {
			logSuccess("welcome %s, created identity %s", bold(name), res.UserID)
		} else {
			logSuccess("logged in as %s", bold(name))
		}
		logSuccess("session expires %s", humanUntil(res.ExpiresAt))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session token for a server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := f.Server()
		if err != nil {
			return err
		}
		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		removed, err := cfg.RemoveCredential(server)
		if err != nil {
			return err
		}
		if !removed {
			log.Warn().Msgf("no saved session for %s", server)
			return nil
		}
		if err := cliconfig.Save(cfg); err != nil {
			return err
		}
		logSuccess("removed session for %s", bold(server))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
