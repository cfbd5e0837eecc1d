package idp

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

const TypeStatic = "static"

var _ core.IdentityVerifier = (*StaticVerifier)(nil)

// StaticSubject is the subject returned for a configured credential.
type StaticSubject struct {
	ID         string         `mapstructure:"id"`
	Name       string         `mapstructure:"name"`
	Attributes map[string]any `mapstructure:"attributes"`
}

type StaticConfig struct {
	// Credentials maps accepted credentials to the subject they authenticate.
	Credentials map[string]StaticSubject `mapstructure:"credentials"`
}

// StaticVerifier accepts a fixed set of credentials.
// It stands in for a real provider in testing mode and local development.
type StaticVerifier struct {
	name        string
	credentials map[string]StaticSubject
}

func NewStatic(name string, conf StaticConfig) (*StaticVerifier, error) {
	for cred, subject := range conf.Credentials {
		if cred == "" {
			return nil, fmt.Errorf("static provider '%s' has an empty credential", name)
		}
		if subject.ID == "" {
			return nil, fmt.Errorf("static provider '%s' has a credential without subject id", name)
		}
	}
	return &StaticVerifier{
		name:        name,
		credentials: conf.Credentials,
	}, nil
}

func NewStaticFromConfig(cfg config.ProviderConfig) (*StaticVerifier, error) {
	var conf StaticConfig
	if err := decodeConfig(cfg, &conf); err != nil {
		return nil, err
	}
	return NewStatic(cfg.Name, conf)
}

func (s *StaticVerifier) Name() string {
	return s.name
}

func (s *StaticVerifier) Verify(_ context.Context, credential string) (*core.ExternalSubject, error) {
	if credential == "" {
		return nil, errEmptyCredential
	}
	for cred, subject := range s.credentials {
		if subtle.ConstantTimeCompare([]byte(cred), []byte(credential)) == 1 {
			return &core.ExternalSubject{
				Provider:    s.name,
				ID:          subject.ID,
				DisplayName: subject.Name,
				Attributes:  subject.Attributes,
			}, nil
		}
	}
	return nil, core.NewError(core.KindInvalidCredential, "provider '%s' rejected credential", s.name)
}
