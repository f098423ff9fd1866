package ports

import (
	"context"

	"github.com/turkuazz/launcher/internal/domain"
)

type IdentityRepository interface {
	Load(ctx context.Context) (domain.CredentialSnapshot, error)
	Save(ctx context.Context, snapshot domain.CredentialSnapshot) error
}
