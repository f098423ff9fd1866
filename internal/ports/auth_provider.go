package ports

import "context"

// TokenBundle is what the external auth provider yields from its login and
// refresh flows.
type TokenBundle struct {
	AccessToken    string
	ClientToken    string
	UUID           string
	DisplayName    string
	RefreshToken   string
	UserProperties map[string]string
}

type AuthProvider interface {
	// Login runs the interactive, provider-controlled browser flow. A
	// pending call resolves with domain.ErrLoginCancelled when CancelLogin
	// fires; it never hangs past its configured timeout.
	Login(ctx context.Context) (TokenBundle, error)

	// Refresh exchanges a stored refresh token for a fresh bundle.
	Refresh(ctx context.Context, refreshToken string) (TokenBundle, error)

	// CancelLogin aborts the pending interactive login, if any, and reports
	// whether one was cancelled.
	CancelLogin() bool
}
