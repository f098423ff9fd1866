package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPKCEPairChallengeIsS256OfVerifier(t *testing.T) {
	t.Parallel()

	pair, err := NewPKCEPair()
	require.NoError(t, err)
	require.NotEmpty(t, pair.Verifier)

	hash := sha256.Sum256([]byte(pair.Verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), pair.Challenge)

	other, err := NewPKCEPair()
	require.NoError(t, err)
	assert.NotEqual(t, pair.Verifier, other.Verifier)
}

func TestBuildAuthorizationURL(t *testing.T) {
	t.Parallel()

	rawURL, err := BuildAuthorizationURL(AuthorizationRequest{
		AuthURL:       "https://auth.turkuazz.net/authorize",
		ClientID:      "turkuazz-launcher",
		RedirectURI:   "http://localhost:43110/auth/callback",
		Scopes:        []string{"openid", "profile"},
		State:         "state-1",
		CodeChallenge: "challenge-1",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "turkuazz-launcher", q.Get("client_id"))
	assert.Equal(t, "openid profile", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "challenge-1", q.Get("code_challenge"))
	assert.Equal(t, PKCEChallengeMethodS256, q.Get("code_challenge_method"))
}

func TestBuildAuthorizationURLValidation(t *testing.T) {
	t.Parallel()

	valid := AuthorizationRequest{
		AuthURL:       "https://auth.turkuazz.net/authorize",
		ClientID:      "turkuazz-launcher",
		RedirectURI:   "http://localhost/auth/callback",
		State:         "state-1",
		CodeChallenge: "challenge-1",
	}

	tests := []struct {
		name   string
		mutate func(*AuthorizationRequest)
	}{
		{"missing auth url", func(r *AuthorizationRequest) { r.AuthURL = "" }},
		{"missing client id", func(r *AuthorizationRequest) { r.ClientID = "" }},
		{"missing state", func(r *AuthorizationRequest) { r.State = "" }},
		{"missing challenge", func(r *AuthorizationRequest) { r.CodeChallenge = "" }},
		{"bad scheme", func(r *AuthorizationRequest) { r.AuthURL = "ftp://auth.turkuazz.net" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tc.mutate(&req)
			_, err := BuildAuthorizationURL(req)
			assert.Error(t, err)
		})
	}
}

func TestCallbackServerDeliversCode(t *testing.T) {
	t.Parallel()

	server, err := StartCallbackServer("127.0.0.1:0", "state-1")
	require.NoError(t, err)

	resp, err := http.Get(server.RedirectURI() + "?state=state-1&code=auth-code")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := server.WaitForCode(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code", code)
}

func TestCallbackServerRejectsStateMismatch(t *testing.T) {
	t.Parallel()

	server, err := StartCallbackServer("127.0.0.1:0", "state-1")
	require.NoError(t, err)

	resp, err := http.Get(server.RedirectURI() + "?state=evil&code=auth-code")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err = server.WaitForCode(5 * time.Second)
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestCallbackServerRelaysProviderError(t *testing.T) {
	t.Parallel()

	server, err := StartCallbackServer("127.0.0.1:0", "state-1")
	require.NoError(t, err)

	resp, err := http.Get(server.RedirectURI() + "?state=state-1&error=access_denied&error_description=user+cancelled")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	_, err = server.WaitForCode(5 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
	assert.Contains(t, err.Error(), "user cancelled")
}

func TestCallbackServerCloseResolvesPendingWait(t *testing.T) {
	t.Parallel()

	server, err := StartCallbackServer("127.0.0.1:0", "state-1")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = server.Close()
	}()

	_, err = server.WaitForCode(5 * time.Second)
	require.ErrorIs(t, err, ErrCallbackClosed)
}

func TestCallbackServerRequiresState(t *testing.T) {
	t.Parallel()

	_, err := StartCallbackServer("127.0.0.1:0", "")
	require.ErrorIs(t, err, ErrMissingState)
}

func TestExchangeCodeForTokens(t *testing.T) {
	t.Parallel()

	issuer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		assert.Equal(t, "verifier-1", r.PostForm.Get("code_verifier"))

		_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","expires_in":3600}`))
	}))
	t.Cleanup(issuer.Close)

	tokens, err := ExchangeCodeForTokens(issuer.Client(), TokenExchangeRequest{
		Issuer:       issuer.URL,
		ClientID:     "turkuazz-launcher",
		RedirectURI:  "http://localhost/auth/callback",
		Code:         "auth-code",
		CodeVerifier: "verifier-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()

	issuer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-old", r.PostForm.Get("refresh_token"))

		_, _ = w.Write([]byte(`{"access_token":"access-new"}`))
	}))
	t.Cleanup(issuer.Close)

	tokens, err := RefreshTokens(issuer.Client(), issuer.URL, "turkuazz-launcher", "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "access-new", tokens.AccessToken)
	assert.Empty(t, tokens.RefreshToken)
}

func TestTokenEndpointMissingAccessTokenFails(t *testing.T) {
	t.Parallel()

	issuer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(issuer.Close)

	_, err := RefreshTokens(issuer.Client(), issuer.URL, "turkuazz-launcher", "refresh-old")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access token")
}
