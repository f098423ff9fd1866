package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

func TestRefreshRejectsOfflineIdentity(t *testing.T) {
	t.Parallel()

	refresher := NewRefresher(&fakeProvider{}, fakeClock{now: time.Now()})

	_, err := refresher.Refresh(context.Background(), domain.NewOfflineIdentity("Steve", false))
	require.ErrorIs(t, err, domain.ErrNoRefreshToken)
}

func TestRefreshRejectsMissingRefreshToken(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	refresher := NewRefresher(provider, fakeClock{now: time.Now()})

	identity := onlineTestIdentity(time.Now())
	identity.RefreshToken = ""

	_, err := refresher.Refresh(context.Background(), identity)
	require.ErrorIs(t, err, domain.ErrNoRefreshToken)
	assert.Zero(t, provider.refreshCalls)
}

func TestRefreshWrapsProviderFailure(t *testing.T) {
	t.Parallel()

	refresher := NewRefresher(&fakeProvider{refreshErr: assert.AnError}, fakeClock{now: time.Now()})

	_, err := refresher.Refresh(context.Background(), onlineTestIdentity(time.Now()))

	var providerErr *domain.ProviderError
	require.ErrorAs(t, err, &providerErr)
	require.ErrorIs(t, err, assert.AnError)
}

func TestRefreshKeepsPriorRefreshTokenWhenNotRotated(t *testing.T) {
	t.Parallel()

	now := time.Now()
	provider := &fakeProvider{refreshBundle: ports.TokenBundle{AccessToken: "access-new"}}
	refresher := NewRefresher(provider, fakeClock{now: now})

	refreshed, err := refresher.Refresh(context.Background(), onlineTestIdentity(now))
	require.NoError(t, err)

	assert.Equal(t, "access-new", refreshed.AccessToken)
	assert.Equal(t, "refresh-old", refreshed.RefreshToken)
	assert.Equal(t, "Hero", refreshed.DisplayName)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), refreshed.ExpiresAtMs)
}

func TestInteractiveLoginMapsBundleToOnlineIdentity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	provider := &fakeProvider{loginBundle: ports.TokenBundle{
		AccessToken:  "access",
		RefreshToken: "refresh",
		UUID:         "4aa7f3b1",
		DisplayName:  "Hero",
	}}
	refresher := NewRefresher(provider, fakeClock{now: now})

	identity, err := refresher.InteractiveLogin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.IdentityOnline, identity.Kind)
	assert.Equal(t, "4aa7f3b1", identity.AccountID)
	assert.Equal(t, "Hero", identity.DisplayName)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), identity.ExpiresAtMs)
	require.NoError(t, identity.Validate())
}

func TestCancelInteractiveLoginDelegatesToProvider(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	refresher := NewRefresher(provider, fakeClock{now: time.Now()})

	assert.True(t, refresher.CancelInteractiveLogin())
	assert.True(t, provider.cancelled)
}
