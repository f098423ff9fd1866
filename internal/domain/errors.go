package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNoActiveIdentity = errors.New("no active identity selected")

	// ErrNoRefreshToken is reported before any network call when an online
	// identity has no refresh token stored.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrAuthExpired maps a failed proactive refresh at launch time. The
	// stale token is never used past this point.
	ErrAuthExpired = errors.New("authentication expired, please login again")

	// ErrLoginCancelled resolves a pending interactive login that was
	// aborted through the cancellation hook.
	ErrLoginCancelled = errors.New("interactive login cancelled")
)

// ProviderError wraps a rejection from the external auth provider. It is
// never retried automatically; the caller surfaces "please re-authenticate".
type ProviderError struct {
	Reason string
	Cause  error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth provider rejected request: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("auth provider rejected request: %s", e.Reason)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// JavaNotFoundError blocks a launch when no Java executable could be
// resolved from the configured path, PATH, or known install directories.
type JavaNotFoundError struct {
	Searched []string
}

func (e *JavaNotFoundError) Error() string {
	return fmt.Sprintf("no java executable found (searched %d locations)", len(e.Searched))
}

// InsufficientSpaceError blocks a launch when the game root's volume is
// below the required headroom floor.
type InsufficientSpaceError struct {
	AvailableGB float64
	RequiredGB  float64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space: %.2fGB available, %.2fGB required", e.AvailableGB, e.RequiredGB)
}

type InstallErrorKind string

const (
	InstallCorruptedVersionJar InstallErrorKind = "corrupted-version-jar"
	InstallMissingVersionJSON  InstallErrorKind = "missing-version-json"
	InstallMissingLibraries    InstallErrorKind = "missing-libraries"
	InstallUnclassified        InstallErrorKind = "unclassified"
)

// LibraryRef names one dependent library: its download URL and the relative
// path it must exist at under the game root.
type LibraryRef struct {
	Path string
	URL  string
}

// InstallError is the closed classification of installation failures. The
// process layer maps its own error conventions into this type so the rest of
// the system never inspects collaborator-specific shapes.
type InstallError struct {
	Kind      InstallErrorKind
	Libraries []LibraryRef
	Cause     error
}

func (e *InstallError) Error() string {
	switch e.Kind {
	case InstallMissingLibraries:
		return fmt.Sprintf("installation invalid: %d missing libraries", len(e.Libraries))
	case InstallUnclassified:
		if e.Cause != nil {
			return fmt.Sprintf("installation failure: %v", e.Cause)
		}
		return "installation failure"
	default:
		return fmt.Sprintf("installation invalid: %s", e.Kind)
	}
}

func (e *InstallError) Unwrap() error { return e.Cause }

// RepairFailedError carries the install error that survived the repair
// budget; it is surfaced verbatim instead of retrying indefinitely.
type RepairFailedError struct {
	Last *InstallError
}

func (e *RepairFailedError) Error() string {
	return fmt.Sprintf("repair failed: %v", e.Last)
}

func (e *RepairFailedError) Unwrap() error { return e.Last }

// SpawnError wraps a non-installation failure from the process-launch layer.
type SpawnError struct {
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn game process: %v", e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }
