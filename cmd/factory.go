package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Yishiba/animeko/internal/app"
	"github.com/Yishiba/animeko/internal/cliconfig"
	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the Animeko server to connect to.
	RemoteAddr string

	// ConfigPath is the server configuration used by serve and local commands.
	ConfigPath string
}

func NewFactory() *Factory {
	return &Factory{}
}

// Server returns the configured remote server address.
func (f *Factory) Server() (string, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(AnimekoAddrKey) // prio 2: config/env
	}
	if server == "" {
		return "", fmt.Errorf("server address not configured (use --server or set ANIMEKO_ADDR)")
	}
	return server, nil
}

// GetClient returns an HTTP client for remote operations, authenticated with the saved session if any.
func (f *Factory) GetClient() (*client.Client, error) {
	server, err := f.Server()
	if err != nil {
		return nil, err
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		}
	}

	if envToken := viper.GetString(AnimekoTokenKey); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

func (f *Factory) LoadConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		if env := os.Getenv("ANIMEKO_CONFIG"); env != "" {
			f.ConfigPath = env
		} else {
			return nil, fmt.Errorf("config file not specified (use --config)")
		}
	}
	return config.Load(f.ConfigPath)
}

// BuildApp loads the server config and wires all components.
func (f *Factory) BuildApp(ctx context.Context) (*app.App, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return app.Build(ctx, cfg)
}

func (f *Factory) bindConfigFlag(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "The Animeko server config file to use")
}
