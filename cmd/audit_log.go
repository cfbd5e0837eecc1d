package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	auditLogLimit      int
	auditLogFailedOnly bool
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Display the most recent login attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadAuditEntries()
		if err != nil {
			return err
		}

		if auditLogFailedOnly {
			failed := entries[:0]
			for _, e := range entries {
				if !e.Success {
					failed = append(failed, e)
				}
			}
			entries = failed
		}
		if auditLogLimit > 0 && len(entries) > auditLogLimit {
			entries = entries[len(entries)-auditLogLimit:]
		}
		log.Debug().Msgf("Showing %d audit entries", len(entries))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Correlation", "Provider", "Subject", "User", "Result", "Error",
		})

		for _, e := range entries {
			result := green("issued")
			if !e.Success {
				result = red(string(e.ErrorKind))
			}
			if e.NewUser {
				result += faint(" (new)")
			}
			t.AppendRow(table.Row{
				e.Time.Local().Format(time.RFC3339),
				faint(e.ID),
				e.Provider,
				truncate(e.Subject, 24),
				truncate(e.UserID.String(), 36),
				result,
				truncate(e.Error, 48),
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntVarP(&auditLogLimit, "limit", "n", 25, "Number of audit entries to show")
	auditLogCmd.Flags().BoolVar(&auditLogFailedOnly, "failed", false, "Only show failed attempts")
}
