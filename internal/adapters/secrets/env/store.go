package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

// envPrefix namespaces the secret variables; the key "gate/pin" maps to
// PARKFEE_SECRET_GATE_PIN.
const envPrefix = "PARKFEE_SECRET_"

var ErrReadOnly = errors.New("environment secrets are read-only")

// Store resolves secrets from the process environment, for deployments
// that inject credentials instead of keeping them on disk. It is
// read-only; writes belong to the file store behind it in the chain.
type Store struct{}

var _ ports.SecretStore = Store{}

func NewStore() Store { return Store{} }

func (Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := variableName(key)
	if err != nil {
		return "", err
	}

	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("secret %q (%s): %w", key, name, domain.ErrSecretNotFound)
	}

	return value, nil
}

func (Store) Put(ctx context.Context, key string, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("put secret %q: %w", key, ErrReadOnly)
}

func (Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("delete secret %q: %w", key, ErrReadOnly)
}

// variableName maps a slash-separated key onto an environment variable:
// uppercased, with every non-alphanumeric rune collapsed to '_'.
func variableName(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("secret key is empty")
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, trimmed)

	return envPrefix + mapped, nil
}
