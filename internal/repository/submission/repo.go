// Package submission stores visitor submissions as RedisJSON documents.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/schemefinder/internal/db"
	"github.com/kailas-cloud/schemefinder/internal/domain"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// store is the consumer interface for submissions (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string) ([][]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the submission repository contract.
type Repo struct {
	store  store
	prefix string
}

// New creates a submission repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// ListSubmissions returns all submissions, newest first.
func (r *Repo) ListSubmissions(ctx context.Context) ([]domsub.Submission, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"submission:*")
	if err != nil {
		return nil, fmt.Errorf("scan submissions: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	docs, err := r.store.JSONMGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.mget submissions: %w", err)
	}

	out := make([]domsub.Submission, 0, len(docs))
	for i, raw := range docs {
		if raw == nil {
			continue
		}
		var s domsub.Submission
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// GetSubmission returns a submission by ID.
func (r *Repo) GetSubmission(ctx context.Context, id string) (domsub.Submission, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsub.Submission{}, domain.ErrNotFound
		}
		return domsub.Submission{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	var s domsub.Submission
	if err := json.Unmarshal(raw, &s); err != nil {
		return domsub.Submission{}, fmt.Errorf("unmarshal submission: %w", err)
	}
	return s, nil
}

// CreateSubmission stores a new submission.
func (r *Repo) CreateSubmission(ctx context.Context, s *domsub.Submission) error {
	key := r.key(s.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.write(ctx, key, s)
}

// UpdateSubmission replaces an existing submission.
func (r *Repo) UpdateSubmission(ctx context.Context, s *domsub.Submission) error {
	key := r.key(s.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return r.write(ctx, key, s)
}

func (r *Repo) write(ctx context.Context, key string, s *domsub.Submission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "submission:" + id
}
