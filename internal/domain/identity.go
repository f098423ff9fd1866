package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type IdentityKind string

const (
	IdentityOffline IdentityKind = "offline"
	IdentityOnline  IdentityKind = "online"
)

// NilUUID is the pseudo identity used when no random UUID is requested.
// Nothing server-side ever validates it.
const NilUUID = "00000000-0000-0000-0000-000000000000"

// Identity is a credential set usable to launch the game. Offline identities
// carry only a display name and a pseudo UUID; online identities carry
// provider-issued tokens.
type Identity struct {
	Kind        IdentityKind
	DisplayName string

	// Offline only.
	PseudoUUID string

	// Online only.
	AccountID    string
	AccessToken  string
	RefreshToken string
	ExpiresAtMs  int64
	ExtraClaims  map[string]string
}

func NewOfflineIdentity(displayName string, randomUUID bool) Identity {
	pseudo := NilUUID
	if randomUUID {
		pseudo = uuid.NewString()
	}

	return Identity{
		Kind:        IdentityOffline,
		DisplayName: displayName,
		PseudoUUID:  pseudo,
	}
}

func (i Identity) Validate() error {
	switch i.Kind {
	case IdentityOffline:
		if i.DisplayName == "" {
			return errors.New("offline identity display name is required")
		}
	case IdentityOnline:
		if i.AccountID == "" {
			return errors.New("online identity account id is required")
		}
		if i.AccessToken == "" {
			return errors.New("online identity access token is required")
		}
	default:
		return errors.New("unsupported identity kind")
	}

	return nil
}

// DedupKey identifies an identity for upsert/remove purposes: online
// identities dedup by stable account id, offline ones by display name.
func (i Identity) DedupKey() string {
	if i.Kind == IdentityOnline {
		return string(IdentityOnline) + ":" + i.AccountID
	}
	return string(IdentityOffline) + ":" + i.DisplayName
}

// UUID returns the identity's UUID claim regardless of kind. For online
// identities the stable account id is the player UUID issued by the provider.
func (i Identity) UUID() string {
	if i.Kind == IdentityOnline {
		return i.AccountID
	}
	return i.PseudoUUID
}

// NormalizeUUID strips separator characters; the process-launch layer
// expects a bare hex UUID.
func NormalizeUUID(raw string) string {
	return strings.ReplaceAll(raw, "-", "")
}
