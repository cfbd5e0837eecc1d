package audit

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/Yishiba/animeko/internal/core"
)

var _ core.Fingerprinter = Fingerprint

// Fingerprint identifies a token in logs without revealing it.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return "sha256:" + base64.RawStdEncoding.EncodeToString(hash[:])
}
