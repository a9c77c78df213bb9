package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/apper-apps/tekxora-tools-chip/internal/sqlinline"
)

type stubExecutor struct {
	token string
	err   error
	exec  struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return stubRow{token: s.token, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestKey(t *testing.T) {
	store := NewStore(&stubExecutor{token: " abc123 "})
	key, err := store.Key(context.Background(), "Gemini")
	if err != nil {
		t.Fatalf("Key error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}
}

func TestKeyNotStored(t *testing.T) {
	store := NewStore(&stubExecutor{err: pgx.ErrNoRows})
	key, err := store.Key(context.Background(), ProviderOpenAI)
	if err != nil {
		t.Fatalf("Key error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestKeyWrapsQueryError(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewStore(&stubExecutor{err: boom})
	if _, err := store.Key(context.Background(), ProviderOpenAI); !errors.Is(err, boom) {
		t.Fatalf("Key error = %v, want %v", err, boom)
	}
	if _, err := store.Key(context.Background(), "qwen"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestResolvePrefersEnvKey(t *testing.T) {
	store := NewStore(&stubExecutor{token: "stored"})
	key, err := store.Resolve(context.Background(), ProviderOpenAI, " env-key ")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if key != "env-key" {
		t.Fatalf("expected env-key, got %q", key)
	}
	key, err = store.Resolve(context.Background(), ProviderOpenAI, "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if key != "stored" {
		t.Fatalf("expected stored, got %q", key)
	}
}

func TestResolveWithoutStore(t *testing.T) {
	var store *Store
	key, err := store.Resolve(context.Background(), ProviderGemini, "")
	if err != nil || key != "" {
		t.Fatalf("Resolve on nil store = %q, %v", key, err)
	}
}

func TestSetKey(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.SetKey(context.Background(), "OpenAI", " secret "); err != nil {
		t.Fatalf("SetKey error: %v", err)
	}
	if exec.exec.query != sqlinline.QUpsertProviderKey {
		t.Fatalf("unexpected query: %s", exec.exec.query)
	}
	if len(exec.exec.args) != 2 || exec.exec.args[0] != ProviderOpenAI || exec.exec.args[1] != "secret" {
		t.Fatalf("args = %v, want [openai secret]", exec.exec.args)
	}
}

func TestSetKeyRejects(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.SetKey(context.Background(), ProviderGemini, " "); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := store.SetKey(context.Background(), "qwen", "secret"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
