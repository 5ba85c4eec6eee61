// Package scheme stores scheme records as RedisJSON documents.
package scheme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/schemefinder/internal/db"
	"github.com/kailas-cloud/schemefinder/internal/domain"
	domscheme "github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// store is the consumer interface for schemes (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo implements the scheme repository contracts of the catalog and admin use cases.
type Repo struct {
	store  store
	prefix string
}

// New creates a scheme repository. prefix namespaces every key (e.g. "schemefinder:").
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// ListSchemes returns every stored scheme, oldest first.
func (r *Repo) ListSchemes(ctx context.Context) ([]domscheme.Scheme, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"scheme:*")
	if err != nil {
		return nil, fmt.Errorf("scan schemes: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	docs, err := r.store.JSONMGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.mget schemes: %w", err)
	}

	out := make([]domscheme.Scheme, 0, len(docs))
	for i, raw := range docs {
		if raw == nil {
			continue // deleted between SCAN and MGET
		}
		s, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetScheme returns a scheme by ID.
func (r *Repo) GetScheme(ctx context.Context, id string) (domscheme.Scheme, error) {
	key := r.schemeKey(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domscheme.Scheme{}, domain.ErrNotFound
		}
		return domscheme.Scheme{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decode(raw)
}

// CreateScheme stores a new scheme. Returns ErrAlreadyExists if the ID is taken.
func (r *Repo) CreateScheme(ctx context.Context, s *domscheme.Scheme) error {
	key := r.schemeKey(s.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.write(ctx, key, s)
}

// UpdateScheme replaces an existing scheme. Returns ErrNotFound if it does not exist.
func (r *Repo) UpdateScheme(ctx context.Context, s *domscheme.Scheme) error {
	key := r.schemeKey(s.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return r.write(ctx, key, s)
}

// DeleteScheme removes a scheme. Returns ErrNotFound if it does not exist.
func (r *Repo) DeleteScheme(ctx context.Context, id string) error {
	key := r.schemeKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return r.bumpRevision(ctx)
}

// Revision returns the catalog revision counter. It changes on every write.
func (r *Repo) Revision(ctx context.Context) (int64, error) {
	raw, err := r.store.Get(ctx, r.revisionKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get revision: %w", err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse revision %q: %w", raw, err)
	}
	return n, nil
}

func (r *Repo) write(ctx context.Context, key string, s *domscheme.Scheme) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal scheme: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return r.bumpRevision(ctx)
}

func (r *Repo) bumpRevision(ctx context.Context) error {
	if _, err := r.store.IncrBy(ctx, r.revisionKey(), 1); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return nil
}

func (r *Repo) schemeKey(id string) string {
	return r.prefix + "scheme:" + id
}

func (r *Repo) revisionKey() string {
	return r.prefix + "catalog:revision"
}

func decode(raw []byte) (domscheme.Scheme, error) {
	var s domscheme.Scheme
	if err := json.Unmarshal(raw, &s); err != nil {
		return domscheme.Scheme{}, fmt.Errorf("unmarshal scheme: %w", err)
	}
	return s, nil
}
