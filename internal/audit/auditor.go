package audit

import (
	"fmt"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

// New creates the auditor selected in cfg. Disabled auditing yields a NoopAuditor.
func New(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "file", "":
		return NewFileAuditor(cfg.Path)
	case "memory":
		return NewInMemoryAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", cfg.Type)
	}
}
