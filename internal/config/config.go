package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultTTL             = 24 * time.Hour
	DefaultProviderTimeout = 10 * time.Second
	DefaultCacheSize       = 4096
)

const (
	KeyTypeHS256   = "hs256"
	KeyTypeEd25519 = "ed25519"
)

const (
	StoreTypeMemory = "memory"
	StoreTypeSQL    = "sql"
	StoreTypeRedis  = "redis"
)

type Config struct {
	Session   SessionConfig    `yaml:"session"`
	Keys      KeysConfig       `yaml:"keys"`
	Providers []ProviderConfig `yaml:"providers"`
	Store     StoreConfig      `yaml:"store"`
	Audit     AuditConfig      `yaml:"audit"`
}

// SessionConfig controls the session tokens issued by this service.
type SessionConfig struct {
	// Issuer is written to and required in the "iss" claim.
	Issuer string `yaml:"issuer"`

	// Audience is written to and required in the "aud" claim.
	Audience string `yaml:"audience"`

	// TTL is the lifetime of issued session tokens.
	TTL time.Duration `yaml:"ttl"`

	// Leeway tolerates clock skew between instances when checking "iat".
	Leeway time.Duration `yaml:"leeway"`

	// ProviderTimeout bounds a single call to an external identity provider.
	// Providers may override it.
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
}

// KeysConfig holds the signing key material.
// Exactly one key signs, every listed key is accepted during verification.
type KeysConfig struct {
	Signing string      `yaml:"signing"`
	Keys    []KeyConfig `yaml:"keys"`
}

// KeyConfig describes one key. Exactly one material source must be set.
type KeyConfig struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"` // e.g., "hs256", "ed25519"

	// hs256
	Secret     string `yaml:"secret"`
	SecretEnv  string `yaml:"secret_env"`
	SecretFile string `yaml:"secret_file"`

	// ed25519, base64 encoded seed or private key
	PrivateKey     string `yaml:"private_key"`
	PrivateKeyFile string `yaml:"private_key_file"`
	// PublicKey (base64) allows verify-only keys, e.g. a key that is being retired elsewhere.
	PublicKey string `yaml:"public_key"`
}

func (k KeyConfig) sources() int {
	n := 0
	for _, s := range []string{k.Secret, k.SecretEnv, k.SecretFile, k.PrivateKey, k.PrivateKeyFile, k.PublicKey} {
		if s != "" {
			n++
		}
	}
	return n
}

// ProviderConfig holds configuration for an external identity provider.
type ProviderConfig struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"` // e.g., "bangumi", "oidc", "static"
	Timeout time.Duration  `yaml:"timeout"`
	Config  map[string]any `yaml:",inline"` // Capture remaining fields
}

// StoreConfig selects the identity store.
type StoreConfig struct {
	Type string `yaml:"type"` // e.g., "memory", "sql", "redis"

	// DSN for the sql store, e.g. "file:animeko.db" or "postgres://..."
	DSN string `yaml:"dsn"`

	// redis
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`

	// CacheSize is the number of resolved identities kept in memory. Negative disables the cache.
	CacheSize int `yaml:"cache_size"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses, defaults and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultTTL
	}
	if c.Session.ProviderTimeout == 0 {
		c.Session.ProviderTimeout = DefaultProviderTimeout
	}
	if c.Store.Type == "" {
		c.Store.Type = StoreTypeMemory
	}
	if c.Store.CacheSize == 0 {
		c.Store.CacheSize = DefaultCacheSize
	}
	if c.Audit.Enabled && c.Audit.Type == "" {
		c.Audit.Type = "file"
	}
}

func (c *Config) Validate() error {
	if c.Session.Issuer == "" {
		return fmt.Errorf("session.issuer is required")
	}
	if c.Session.Audience == "" {
		return fmt.Errorf("session.audience is required")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}
	if c.Session.Leeway < 0 {
		return fmt.Errorf("session.leeway must not be negative")
	}

	if err := c.Keys.Validate(); err != nil {
		return fmt.Errorf("validating keys: %w", err)
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	seen := make(map[string]struct{})
	for idx, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider at index %d has empty name", idx)
		}
		if p.Type == "" {
			return fmt.Errorf("provider '%s' has empty type", p.Name)
		}
		if p.Timeout < 0 {
			return fmt.Errorf("provider '%s' has negative timeout", p.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate provider name '%s'", p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	switch c.Store.Type {
	case StoreTypeMemory:
	case StoreTypeSQL:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for sql store")
		}
	case StoreTypeRedis:
		if c.Store.Addr == "" {
			return fmt.Errorf("store.addr is required for redis store")
		}
	default:
		return fmt.Errorf("unknown store type '%s'", c.Store.Type)
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for file auditor")
			}
		case "memory":
		default:
			return fmt.Errorf("unknown audit type '%s'", c.Audit.Type)
		}
	}

	return nil
}

func (k *KeysConfig) Validate() error {
	if len(k.Keys) == 0 {
		return fmt.Errorf("at least one key is required")
	}
	if k.Signing == "" {
		return fmt.Errorf("keys.signing is required")
	}
	ids := make(map[string]KeyConfig)
	for idx, key := range k.Keys {
		if key.ID == "" {
			return fmt.Errorf("key at index %d has empty id", idx)
		}
		if _, ok := ids[key.ID]; ok {
			return fmt.Errorf("duplicate key id '%s'", key.ID)
		}
		switch key.Type {
		case KeyTypeHS256:
			if key.PrivateKey != "" || key.PrivateKeyFile != "" || key.PublicKey != "" {
				return fmt.Errorf("key '%s': hs256 keys only accept secret, secret_env or secret_file", key.ID)
			}
		case KeyTypeEd25519:
			if key.Secret != "" || key.SecretEnv != "" || key.SecretFile != "" {
				return fmt.Errorf("key '%s': ed25519 keys only accept private_key, private_key_file or public_key", key.ID)
			}
		default:
			return fmt.Errorf("key '%s' has unknown type '%s'", key.ID, key.Type)
		}
		if key.sources() != 1 {
			return fmt.Errorf("key '%s' must have exactly one key source", key.ID)
		}
		ids[key.ID] = key
	}
	signing, ok := ids[k.Signing]
	if !ok {
		return fmt.Errorf("signing key '%s' is not defined", k.Signing)
	}
	if signing.PublicKey != "" {
		return fmt.Errorf("signing key '%s' is verify-only", k.Signing)
	}
	return nil
}
