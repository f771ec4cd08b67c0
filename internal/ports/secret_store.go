package ports

import "context"

// SecretStore holds gate credentials (PIN, password) outside the main
// config file. Keys are slash-separated paths like "gate/password".
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
