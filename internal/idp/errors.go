package idp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/mitchellh/mapstructure"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

var errEmptyCredential = core.NewError(core.KindInvalidCredential, "credential is empty")

// isTransportError reports whether err was caused by the network or a deadline
// rather than by the provider answering.
func isTransportError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func unavailable(provider string, err error) error {
	return core.WrapError(core.KindProviderUnavailable, err, "provider '%s' unavailable", provider)
}

func rejected(provider string, err error) error {
	return core.WrapError(core.KindInvalidCredential, err, "provider '%s' rejected credential", provider)
}

// decodeConfig decodes the provider specific settings of cfg into out.
func decodeConfig(cfg config.ProviderConfig, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder for %s provider '%s': %w", cfg.Type, cfg.Name, err)
	}
	if err := decoder.Decode(cfg.Config); err != nil {
		return fmt.Errorf("failed to decode config for %s provider '%s': %w", cfg.Type, cfg.Name, err)
	}
	return nil
}
