package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

// Config points the provider at the external auth service. OpenURL hands the
// authorization URL to whatever surface presents it (browser, embedded
// window); when nil the URL is only reported through Notify.
type Config struct {
	Issuer     string
	ClientID   string
	ProfileURL string
	ListenAddr string
	Timeout    time.Duration
	Scopes     []string
	OpenURL    func(url string) error
	Notify     func(authURL string)
}

// Provider implements ports.AuthProvider over the provider's browser flow
// and refresh grant. A pending interactive login is cancelable: CancelLogin
// closes the callback server, which resolves the pending Login call.
type Provider struct {
	cfg    Config
	client *http.Client

	mu      sync.Mutex
	pending *CallbackServer
}

var _ ports.AuthProvider = (*Provider)(nil)

func NewProvider(cfg Config, client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "profile", "offline_access"}
	}

	return &Provider{cfg: cfg, client: client}
}

func (p *Provider) Login(ctx context.Context) (ports.TokenBundle, error) {
	pkce, err := NewPKCEPair()
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("generate pkce: %w", err)
	}
	state, err := NewState()
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("generate oauth state: %w", err)
	}

	server, err := StartCallbackServer(p.cfg.ListenAddr, state)
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("start callback server: %w", err)
	}

	p.mu.Lock()
	p.pending = server
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
	}()

	authURL, err := BuildAuthorizationURL(AuthorizationRequest{
		AuthURL:       p.cfg.Issuer + "/oauth/authorize",
		ClientID:      p.cfg.ClientID,
		RedirectURI:   server.RedirectURI(),
		Scopes:        p.cfg.Scopes,
		State:         state,
		CodeChallenge: pkce.Challenge,
	})
	if err != nil {
		_ = server.Close()
		return ports.TokenBundle{}, fmt.Errorf("build authorization url: %w", err)
	}

	if p.cfg.Notify != nil {
		p.cfg.Notify(authURL)
	}
	if p.cfg.OpenURL != nil {
		if err := p.cfg.OpenURL(authURL); err != nil {
			_ = server.Close()
			return ports.TokenBundle{}, fmt.Errorf("open provider sign-in surface: %w", err)
		}
	}

	stop := context.AfterFunc(ctx, func() { _ = server.Close() })
	defer stop()

	code, err := server.WaitForCode(p.cfg.Timeout)
	if err != nil {
		if errors.Is(err, ErrCallbackClosed) {
			return ports.TokenBundle{}, domain.ErrLoginCancelled
		}
		return ports.TokenBundle{}, fmt.Errorf("wait for oauth callback: %w", err)
	}

	tokens, err := ExchangeCodeForTokens(p.client, TokenExchangeRequest{
		Issuer:       p.cfg.Issuer,
		ClientID:     p.cfg.ClientID,
		RedirectURI:  server.RedirectURI(),
		Code:         code,
		CodeVerifier: pkce.Verifier,
	})
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("exchange code for tokens: %w", err)
	}

	return p.bundleFromTokens(ctx, tokens)
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (ports.TokenBundle, error) {
	tokens, err := RefreshTokens(p.client, p.cfg.Issuer, p.cfg.ClientID, refreshToken)
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("refresh tokens: %w", err)
	}

	return p.bundleFromTokens(ctx, tokens)
}

func (p *Provider) CancelLogin() bool {
	p.mu.Lock()
	server := p.pending
	p.pending = nil
	p.mu.Unlock()

	if server == nil {
		return false
	}

	_ = server.Close()
	return true
}

// bundleFromTokens resolves the player profile behind an access token so the
// bundle carries the account's stable UUID and display name.
func (p *Provider) bundleFromTokens(ctx context.Context, tokens TokenResponse) (ports.TokenBundle, error) {
	bundle := ports.TokenBundle{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}

	if p.cfg.ProfileURL == "" {
		return bundle, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.ProfileURL, nil)
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.TokenBundle{}, fmt.Errorf("fetch player profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ports.TokenBundle{}, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	var profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseBytes)).Decode(&profile); err != nil {
		return ports.TokenBundle{}, fmt.Errorf("decode player profile: %w", err)
	}
	if profile.ID == "" || profile.Name == "" {
		return ports.TokenBundle{}, errors.New("player profile missing id or name")
	}

	bundle.UUID = profile.ID
	bundle.DisplayName = profile.Name
	return bundle, nil
}
