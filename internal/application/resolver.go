package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

// expiryFloor is how close to expiry a token may get before a proactive
// refresh is forced.
const expiryFloor = 5 * time.Minute

const defaultRAMMB = 2048

var (
	releaseVersionPattern  = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)
	snapshotVersionPattern = regexp.MustCompile(`^\d{2}w\d{2}[a-z]$`)
)

// LaunchOverrides are call-site overrides layered above profile overrides.
// Nothing exposes them today; the interface accepts them for forward
// compatibility.
type LaunchOverrides struct {
	RAMMB    int
	JavaPath string
}

// Resolution is the resolver's full output: the runnable spec plus the
// identity that must be used for the launch (possibly refreshed).
type Resolution struct {
	Spec      domain.LaunchSpec
	Identity  domain.Identity
	Refreshed bool
}

// Resolver merges global settings, profile overrides, and runtime auth into
// one concrete launch specification. Steps run strictly in sequence: token
// freshness, then disk space, then configuration, so that each failure
// short-circuits the rest.
type Resolver struct {
	java      ports.JavaLocator
	disk      ports.DiskProber
	refresher *Refresher
	clock     ports.Clock
	logger    *zap.Logger
}

func NewResolver(java ports.JavaLocator, disk ports.DiskProber, refresher *Refresher, clock ports.Clock, logger *zap.Logger) *Resolver {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{java: java, disk: disk, refresher: refresher, clock: clock, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, profile domain.Profile, settings ports.Settings, identity domain.Identity, instanceID string, overrides LaunchOverrides) (Resolution, error) {
	if err := profile.Validate(); err != nil {
		return Resolution{}, fmt.Errorf("validate profile: %w", err)
	}

	resolution := Resolution{Identity: identity}

	if identity.Kind == domain.IdentityOnline {
		deadline := time.UnixMilli(identity.ExpiresAtMs).Add(-expiryFloor)
		if !r.clock.Now().Before(deadline) {
			r.logger.Info("token expiring soon, refreshing",
				zap.String("instanceId", instanceID),
				zap.String("account", identity.DisplayName))

			refreshed, err := r.refresher.Refresh(ctx, identity)
			if err != nil {
				return Resolution{}, fmt.Errorf("%w: %v", domain.ErrAuthExpired, err)
			}
			resolution.Identity = refreshed
			resolution.Refreshed = true
		}
	}

	space, err := r.disk.CheckSpace(settings.GamePath)
	if err != nil {
		return Resolution{}, fmt.Errorf("check disk space: %w", err)
	}
	if !space.HasSpace() {
		return Resolution{}, &domain.InsufficientSpaceError{
			AvailableGB: space.AvailableGB(),
			RequiredGB:  space.RequiredGB(),
		}
	}

	ramMB := settings.RAMMB
	if ramMB <= 0 {
		ramMB = defaultRAMMB
	}
	javaPath := settings.JavaPath
	if profile.Overrides != nil {
		if profile.Overrides.RAMMB > 0 {
			ramMB = profile.Overrides.RAMMB
		}
		if profile.Overrides.JavaPath != "" {
			javaPath = profile.Overrides.JavaPath
		}
	}
	if overrides.RAMMB > 0 {
		ramMB = overrides.RAMMB
	}
	if overrides.JavaPath != "" {
		javaPath = overrides.JavaPath
	}

	javaExecutable, err := r.java.Locate(ctx, javaPath)
	if err != nil {
		return Resolution{}, err
	}

	spec := domain.LaunchSpec{
		InstanceID:     instanceID,
		VersionID:      profile.VersionID,
		GameRoot:       settings.GamePath,
		JavaExecutable: javaExecutable,
		MinMemoryMB:    ramMB,
		MaxMemoryMB:    ramMB,
		Claims:         claimsFor(resolution.Identity),
		LauncherTag:    "turkuazz",
	}
	spec.VersionNumber, spec.VersionType, spec.CustomVersion = resolveVersionTarget(settings.GamePath, profile.VersionID, r.logger)

	if err := spec.Validate(); err != nil {
		return Resolution{}, fmt.Errorf("validate launch spec: %w", err)
	}

	resolution.Spec = spec
	return resolution, nil
}

func claimsFor(identity domain.Identity) domain.IdentityClaims {
	claims := domain.IdentityClaims{
		Name: identity.DisplayName,
		UUID: domain.NormalizeUUID(identity.UUID()),
	}

	if identity.Kind == domain.IdentityOnline {
		claims.AccessToken = identity.AccessToken
		claims.UserType = domain.UserTypeMojang
	} else {
		claims.AccessToken = ""
		claims.UserType = domain.UserTypeLegacy
	}

	return claims
}

// resolveVersionTarget classifies the version id and, for custom versions
// whose descriptor inherits from a parent, redirects the launch to the
// parent with the child recorded as the custom overlay.
func resolveVersionTarget(gameRoot, versionID string, logger *zap.Logger) (number, kind, custom string) {
	switch {
	case releaseVersionPattern.MatchString(versionID):
		return versionID, "release", ""
	case snapshotVersionPattern.MatchString(versionID):
		return versionID, "snapshot", ""
	}

	number, kind, custom = versionID, "custom", ""

	descriptorPath := filepath.Join(gameRoot, "versions", versionID, versionID+".json")
	data, err := os.ReadFile(descriptorPath)
	if err != nil {
		return number, kind, custom
	}

	var descriptor struct {
		InheritsFrom string `json:"inheritsFrom"`
	}
	if err := json.Unmarshal(data, &descriptor); err != nil {
		logger.Warn("failed to parse version descriptor for inheritance",
			zap.String("version", versionID), zap.Error(err))
		return number, kind, custom
	}

	if descriptor.InheritsFrom != "" {
		return descriptor.InheritsFrom, "release", versionID
	}

	return number, kind, custom
}

// IsConfigBlocked reports whether err is one of the launch-blocking
// configuration failures that must never reach a spawn attempt.
func IsConfigBlocked(err error) bool {
	var javaErr *domain.JavaNotFoundError
	var spaceErr *domain.InsufficientSpaceError

	return errors.As(err, &javaErr) || errors.As(err, &spaceErr) || errors.Is(err, domain.ErrAuthExpired)
}
