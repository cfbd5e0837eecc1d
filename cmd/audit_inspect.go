package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/core"
)

var auditInspectCmd = &cobra.Command{
	Use:     "inspect CORRELATION-ID|FINGERPRINT",
	Short:   "Show full details of a specific login attempt",
	Example: `  animeko audit inspect cr7k2m8p0s1q3t5v7x9z
  animeko audit inspect sha256:Xy...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		if query == "" {
			return fmt.Errorf("correlation ID cannot be empty")
		}

		entries, err := loadAuditEntries()
		if err != nil {
			return err
		}

		var entry *core.AuditEntry
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].ID == query || entries[i].TokenFingerprint == query {
				entry = &entries[i]
				break
			}
		}
		if entry == nil {
			log.Warn().Str("query", query).Msg("no audit log entry found")
			return nil
		}

		printKV := func(key string, val any) {
			fmt.Printf("  %-26s %v\n", faint(key)+":", val)
		}
		orNone := func(s string) any {
			if s == "" {
				return faint("(none)")
			}
			return s
		}

		status := green("issued")
		if !entry.Success {
			status = red("failed")
		}

		fmt.Println(bold("\n── Audit Entry ──"))
		printKV("Correlation ID", entry.ID)
		printKV("Time", entry.Time.Local().Format(time.RFC1123))
		printKV("Action", entry.Action)
		printKV("Result", status)

		fmt.Println(bold("\n── Identity ──"))
		printKV("Provider", orNone(entry.Provider))
		printKV("Subject", orNone(entry.Subject))
		printKV("User ID", orNone(entry.UserID.String()))
		printKV("New User", entry.NewUser)

		fmt.Println(bold("\n── Progress ──"))
		printKV("State", entry.State)
		if !entry.Success {
			printKV("Failed After", entry.FailedAt)
			printKV("Error Kind", red(string(entry.ErrorKind)))
			printKV("Retryable", entry.ErrorKind.Retryable())
			printKV("Error Message", red(entry.Error))
		}

		if entry.TokenFingerprint != "" {
			fmt.Println(bold("\n── Output ──"))
			printKV("Token Fingerprint", entry.TokenFingerprint)
			printKV("Token Expires", entry.TokenExpiresAt.Local().Format(time.RFC1123)+" "+humanUntil(entry.TokenExpiresAt))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditInspectCmd)
}
