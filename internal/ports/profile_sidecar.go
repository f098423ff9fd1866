package ports

import (
	"context"

	"github.com/turkuazz/launcher/internal/domain"
)

// ProfileSidecar reads and writes the launcher_profiles.json document that
// lives under the game root and is shared with other launchers. Saving
// replaces locally-managed ("custom") entries and preserves foreign ones.
type ProfileSidecar interface {
	Load(ctx context.Context, gameRoot string) ([]domain.Profile, error)
	Save(ctx context.Context, gameRoot string, profiles []domain.Profile) error
}
