package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Yishiba/animeko/internal/buildinfo"
	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

const (
	TypeBangumi           = "bangumi"
	DefaultBangumiBaseURL = "https://api.bgm.tv"
)

var _ core.IdentityVerifier = (*BangumiVerifier)(nil)

type BangumiConfig struct {
	// BaseURL of the Bangumi API, defaults to https://api.bgm.tv
	BaseURL string `mapstructure:"base_url"`

	// UserAgent sent to Bangumi, which asks API clients to identify themselves.
	UserAgent string `mapstructure:"user_agent"`
}

// BangumiVerifier treats the credential as a Bangumi OAuth access token
// and asks Bangumi who it belongs to.
type BangumiVerifier struct {
	name       string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type bangumiUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	URL      string `json:"url"`
	Avatar   struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
		Small  string `json:"small"`
	} `json:"avatar"`
}

func NewBangumi(name string, conf BangumiConfig, httpClient *http.Client) *BangumiVerifier {
	if conf.BaseURL == "" {
		conf.BaseURL = DefaultBangumiBaseURL
	}
	if conf.UserAgent == "" {
		conf.UserAgent = buildinfo.UserAgent()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &BangumiVerifier{
		name:       name,
		baseURL:    strings.TrimSuffix(conf.BaseURL, "/"),
		userAgent:  conf.UserAgent,
		httpClient: httpClient,
	}
}

func NewBangumiFromConfig(cfg config.ProviderConfig) (*BangumiVerifier, error) {
	var conf BangumiConfig
	if err := decodeConfig(cfg, &conf); err != nil {
		return nil, err
	}
	return NewBangumi(cfg.Name, conf, nil), nil
}

func (b *BangumiVerifier) Name() string {
	return b.name
}

func (b *BangumiVerifier) Verify(ctx context.Context, credential string) (*core.ExternalSubject, error) {
	if credential == "" {
		return nil, errEmptyCredential
	}

	// copy the configured client so its Timeout and redirect policy stay in effect
	client := *b.httpClient
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = &oauth2.Transport{
		Base:   base,
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"}),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v0/me", nil)
	if err != nil {
		return nil, fmt.Errorf("creating bangumi request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable(b.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, unavailable(b.name, fmt.Errorf("unexpected status %d", resp.StatusCode))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, rejected(b.name, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var user bangumiUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&user); err != nil {
		// a truncated or garbled answer is the provider's fault, not the credential's
		return nil, unavailable(b.name, fmt.Errorf("decoding user: %w", err))
	}
	if user.ID <= 0 {
		return nil, rejected(b.name, fmt.Errorf("response contains no user id"))
	}

	displayName := user.Nickname
	if displayName == "" {
		displayName = user.Username
	}

	attrs := map[string]any{}
	if user.Username != "" {
		attrs["username"] = user.Username
	}
	if user.URL != "" {
		attrs["url"] = user.URL
	}
	if user.Avatar.Large != "" {
		attrs["avatar"] = user.Avatar.Large
	}

	return &core.ExternalSubject{
		Provider:    b.name,
		ID:          strconv.FormatInt(user.ID, 10),
		DisplayName: displayName,
		Attributes:  attrs,
	}, nil
}
