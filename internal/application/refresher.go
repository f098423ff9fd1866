package application

import (
	"context"
	"time"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

// assumedTokenLifetime is used instead of a provider-reported expiry; the
// provider does not reliably report one.
const assumedTokenLifetime = time.Hour

// Refresher obtains a fresh access/refresh token pair for an online identity
// nearing expiry. It performs no persistence; the caller updates the
// credential store and emits the token-refreshed event.
type Refresher struct {
	provider ports.AuthProvider
	clock    ports.Clock
}

func NewRefresher(provider ports.AuthProvider, clock ports.Clock) *Refresher {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Refresher{provider: provider, clock: clock}
}

func (r *Refresher) Refresh(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	if identity.Kind != domain.IdentityOnline {
		return domain.Identity{}, domain.ErrNoRefreshToken
	}
	if identity.RefreshToken == "" {
		return domain.Identity{}, domain.ErrNoRefreshToken
	}

	bundle, err := r.provider.Refresh(ctx, identity.RefreshToken)
	if err != nil {
		return domain.Identity{}, &domain.ProviderError{Reason: "refresh rejected", Cause: err}
	}

	refreshToken := bundle.RefreshToken
	if refreshToken == "" {
		// Provider did not rotate the token; keep using the prior one.
		refreshToken = identity.RefreshToken
	}

	refreshed := domain.Identity{
		Kind:         domain.IdentityOnline,
		DisplayName:  bundle.DisplayName,
		AccountID:    bundle.UUID,
		AccessToken:  bundle.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAtMs:  r.clock.Now().Add(assumedTokenLifetime).UnixMilli(),
		ExtraClaims:  bundle.UserProperties,
	}
	if refreshed.DisplayName == "" {
		refreshed.DisplayName = identity.DisplayName
	}
	if refreshed.AccountID == "" {
		refreshed.AccountID = identity.AccountID
	}

	return refreshed, nil
}

// InteractiveLogin runs the provider's browser flow and maps the resulting
// bundle into a stored online identity.
func (r *Refresher) InteractiveLogin(ctx context.Context) (domain.Identity, error) {
	bundle, err := r.provider.Login(ctx)
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{
		Kind:         domain.IdentityOnline,
		DisplayName:  bundle.DisplayName,
		AccountID:    bundle.UUID,
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		ExpiresAtMs:  r.clock.Now().Add(assumedTokenLifetime).UnixMilli(),
		ExtraClaims:  bundle.UserProperties,
	}, nil
}

// CancelInteractiveLogin aborts a pending interactive login.
func (r *Refresher) CancelInteractiveLogin() bool {
	return r.provider.CancelLogin()
}
