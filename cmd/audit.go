package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yishiba/animeko/internal/audit"
	"github.com/Yishiba/animeko/internal/core"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read the login audit log",
	Long: `Reads the audit log written by a server with audit.type "file".
The log path is taken from the config (--config) or given via --file.`,
}

var auditFile string

func init() {
	rootCmd.AddCommand(auditCmd)
	f.bindConfigFlag(auditCmd.PersistentFlags())
	auditCmd.PersistentFlags().StringVar(&auditFile, "file", "", "Path of the audit log (overrides the config)")
}

func loadAuditEntries() ([]core.AuditEntry, error) {
	path := auditFile
	if path == "" {
		cfg, err := f.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if !cfg.Audit.Enabled || cfg.Audit.Type != "file" {
			return nil, fmt.Errorf("config has no file audit log, use --file")
		}
		path = cfg.Audit.Path
	}
	return audit.ReadFile(path)
}
