package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/audit"
)

var fingerprintRaw bool

var fingerprintCmd = &cobra.Command{
	Use:     "fingerprint TOKEN",
	Aliases: []string{"fp"},
	Short:   `Calculate the fingerprint of a session token`,
	Long: `Calculates the fingerprint of a session token (SHA256 -> Base64).
This is the value stored in Animeko's audit logs in the 'token_fingerprint' field.`,
	Example: `  animeko fingerprint eyJhbGciOi...
  echo "eyJhbGciOi..." | animeko fingerprint -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := readArg(args[0])
		if err != nil {
			return err
		}
		if tok == "" {
			return fmt.Errorf("token cannot be empty")
		}

		fp := audit.Fingerprint(tok)
		if fingerprintRaw {
			fmt.Println(fp)
		} else {
			fmt.Println("Fingerprint:", fp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().BoolVarP(&fingerprintRaw, "raw", "r", false,
		"Output only the fingerprint value without additional text")
}
