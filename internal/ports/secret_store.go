package ports

import "context"

// SecretStore keeps token material out of the accounts file. Keys are
// slash-separated logical paths owned by the caller.
type SecretStore interface {
	Put(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
