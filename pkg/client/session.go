package client

import (
	"context"

	"github.com/Yishiba/animeko/internal/api"
)

// Login exchanges an external credential of the named provider for a session token.
// The returned token is not stored in the client; use WithAuthToken for subsequent calls.
func (c *Client) Login(ctx context.Context, provider, credential string) (*api.LoginResponse, string, error) {
	var resp api.LoginResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.LoginRoute).
		build(), api.LoginPayload{
		Provider:   provider,
		Credential: credential,
	}, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// Me returns the claims of the client's session token.
func (c *Client) Me(ctx context.Context) (*api.MeResponse, string, error) {
	if c.authToken == "" {
		return nil, "", ErrInvalidSession
	}
	var resp api.MeResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.MeRoute).
		build(), &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}
