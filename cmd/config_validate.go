package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/token"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Parses and validates the config file and loads the configured keys.
Providers and the identity store are not contacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return logError(err, "", "Configuration is invalid.")
		}
		keys, err := token.LoadKeySet(cfg.Keys)
		if err != nil {
			return logError(err, "", "Keys could not be loaded.")
		}

		providers := make([]string, 0, len(cfg.Providers))
		for _, p := range cfg.Providers {
			providers = append(providers, p.Name+" ("+p.Type+")")
		}
		log.Info().
			Strs("providers", providers).
			Strs("keys", keys.IDs()).
			Str("store", cfg.Store.Type).
			Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	f.bindConfigFlag(configValidateCmd.Flags())
}
