// Package credentials keeps prompt provider API keys in postgres so they can
// be rotated with the credits CLI instead of a redeploy.
package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Key returns the stored key for provider, or "" when none is stored.
func (s *Store) Key(ctx context.Context, provider string) (string, error) {
	provider, err := normalizeProvider(provider)
	if err != nil {
		return "", err
	}
	var key string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectProviderKey, provider).Scan(&key); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("load %s api key: %w", provider, err)
	}
	return strings.TrimSpace(key), nil
}

// Resolve prefers the key from the environment and falls back to the stored
// one. A nil store only resolves the environment key.
func (s *Store) Resolve(ctx context.Context, provider, fromEnv string) (string, error) {
	if key := strings.TrimSpace(fromEnv); key != "" {
		return key, nil
	}
	if s == nil {
		return "", nil
	}
	return s.Key(ctx, provider)
}

func (s *Store) SetKey(ctx context.Context, provider, key string) error {
	provider, err := normalizeProvider(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%s api key is required", provider)
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertProviderKey, provider, key); err != nil {
		return fmt.Errorf("store %s api key: %w", provider, err)
	}
	return nil
}

func normalizeProvider(provider string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	switch provider {
	case ProviderGemini, ProviderOpenAI:
		return provider, nil
	default:
		return "", fmt.Errorf("unsupported provider %q", provider)
	}
}
