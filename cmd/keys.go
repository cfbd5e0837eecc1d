package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/token"
)

var (
	keysGenerateType string
	keysGenerateID   string
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage session signing keys",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new signing key",
	Long: `Generates key material and prints a config snippet for the keys section.
Add the new key to every instance first and switch "signing" to it afterwards,
so tokens signed by either key verify during the rotation.`,
	Example: `  animeko keys generate --type ed25519 --id 2025-01`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(keysGenerateType) {
		case config.KeyTypeHS256:
			secret, err := token.GenerateHMACSecret()
			if err != nil {
				return err
			}
			fmt.Printf("- id: %s\n  type: %s\n  secret: %s\n", keysGenerateID, config.KeyTypeHS256, secret)
		case config.KeyTypeEd25519:
			seed, public, err := token.GenerateEd25519()
			if err != nil {
				return err
			}
			fmt.Printf("- id: %s\n  type: %s\n  private_key: %s\n", keysGenerateID, config.KeyTypeEd25519, seed)
			fmt.Printf("%s\n", faint("# verify-only entry for instances that must not sign:"))
			fmt.Printf("%s\n", faint(fmt.Sprintf("# - id: %s\n#   type: %s\n#   public_key: %s", keysGenerateID, config.KeyTypeEd25519, public)))
		default:
			return fmt.Errorf("unknown key type '%s' (one of: %s, %s)", keysGenerateType, config.KeyTypeHS256, config.KeyTypeEd25519)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)

	keysGenerateCmd.Flags().StringVar(&keysGenerateType, "type", config.KeyTypeEd25519, "Key type (hs256, ed25519)")
	keysGenerateCmd.Flags().StringVar(&keysGenerateID, "id", "k1", "Key id written to the kid header")
}
