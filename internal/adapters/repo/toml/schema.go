package toml

import (
	"fmt"

	"github.com/turkuazz/launcher/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version    int              `toml:"version"`
	Active     string           `toml:"active,omitempty"`
	Identities []identitySchema `toml:"identities"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type identitySchema struct {
	Kind        string `toml:"kind"`
	DisplayName string `toml:"display_name"`
	PseudoUUID  string `toml:"pseudo_uuid,omitempty"`
	AccountID   string `toml:"account_id,omitempty"`

	// Tokens live inline only when no secret store is configured; otherwise
	// TokenRef names the secret holding them.
	AccessToken  string            `toml:"access_token,omitempty"`
	RefreshToken string            `toml:"refresh_token,omitempty"`
	TokenRef     string            `toml:"token_ref,omitempty"`
	ExpiresAtMs  int64             `toml:"expires_at_ms,omitempty"`
	ExtraClaims  map[string]string `toml:"extra_claims,omitempty"`
}

// tokenPayload is the JSON document stored behind a token ref.
type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func toSchema(identity domain.Identity) identitySchema {
	return identitySchema{
		Kind:         string(identity.Kind),
		DisplayName:  identity.DisplayName,
		PseudoUUID:   identity.PseudoUUID,
		AccountID:    identity.AccountID,
		AccessToken:  identity.AccessToken,
		RefreshToken: identity.RefreshToken,
		ExpiresAtMs:  identity.ExpiresAtMs,
		ExtraClaims:  identity.ExtraClaims,
	}
}

func fromSchema(entry identitySchema) domain.Identity {
	return domain.Identity{
		Kind:         domain.IdentityKind(entry.Kind),
		DisplayName:  entry.DisplayName,
		PseudoUUID:   entry.PseudoUUID,
		AccountID:    entry.AccountID,
		AccessToken:  entry.AccessToken,
		RefreshToken: entry.RefreshToken,
		ExpiresAtMs:  entry.ExpiresAtMs,
		ExtraClaims:  entry.ExtraClaims,
	}
}
