package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KV is a string-valued key-value store. Values are JSON documents.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Update applies fn to the current value of key and stores the result.
	// Concurrent updates of the same key are serialized.
	Update(ctx context.Context, key string, fn func(current string, ok bool) (string, error)) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store keeps values in the kv_store table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, s.pool, key)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return set(ctx, s.pool, key, value)
}

func (s *Store) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin kv update %q: %w", key, err)
	}
	defer tx.Rollback(ctx)

	// Row locks cannot cover a key that does not exist yet.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock kv key %q: %w", key, err)
	}

	current, ok, err := get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	if err := set(ctx, tx, key, next); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit kv update %q: %w", key, err)
	}
	return nil
}

func get(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get kv %q: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, q querier, key, value string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("set kv %q: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process KV used for local runs and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid([]byte(value)) {
		return fmt.Errorf("set kv %q: value is not valid JSON", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.data[key]
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	if !json.Valid([]byte(next)) {
		return fmt.Errorf("update kv %q: value is not valid JSON", key)
	}
	m.data[key] = next
	return nil
}

// GetJSON decodes the value at key into out. It reports false when the key is absent.
func GetJSON(ctx context.Context, kv KV, key string, out any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("decode kv %q: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode kv %q: %w", key, err)
	}
	return kv.Set(ctx, key, string(b))
}

// UpdateJSON runs a typed read-modify-write of key. fn receives the zero value
// of T when the key is absent.
func UpdateJSON[T any](ctx context.Context, kv KV, key string, fn func(v *T, ok bool) error) error {
	return kv.Update(ctx, key, func(current string, ok bool) (string, error) {
		var v T
		if ok {
			if err := json.Unmarshal([]byte(current), &v); err != nil {
				return "", fmt.Errorf("decode kv %q: %w", key, err)
			}
		}
		if err := fn(&v, ok); err != nil {
			return "", err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode kv %q: %w", key, err)
		}
		return string(b), nil
	})
}

// SeedJSON stores v under key unless the key already holds a value.
func SeedJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	seeded := false
	err := kv.Update(ctx, key, func(current string, ok bool) (string, error) {
		if ok {
			return current, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode kv %q: %w", key, err)
		}
		seeded = true
		return string(b), nil
	})
	return seeded, err
}
