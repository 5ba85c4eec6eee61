// Package jsonfile serves the static scheme dataset from a JSON file.
// It is read-only: every write returns domain.ErrStoreUnavailable.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	domscheme "github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// Repo reads schemes from a JSON array on disk. The file is re-read on every
// ListSchemes call; the catalog snapshot above it keeps reads off the hot path.
type Repo struct {
	path string
}

// New creates a JSON-file repository for path.
func New(path string) *Repo {
	return &Repo{path: path}
}

// Ping reports whether the dataset file is readable.
func (r *Repo) Ping(_ context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	return f.Close()
}

// ListSchemes loads and normalizes every record in the file.
func (r *Repo) ListSchemes(_ context.Context) ([]domscheme.Scheme, error) {
	return Load(r.path)
}

// GetScheme returns a scheme by ID.
func (r *Repo) GetScheme(ctx context.Context, id string) (domscheme.Scheme, error) {
	all, err := r.ListSchemes(ctx)
	if err != nil {
		return domscheme.Scheme{}, err
	}
	for i := range all {
		if all[i].ID == id {
			return all[i], nil
		}
	}
	return domscheme.Scheme{}, domain.ErrNotFound
}

// Revision returns the file modification time in nanoseconds.
func (r *Repo) Revision(_ context.Context) (int64, error) {
	fi, err := os.Stat(r.path)
	if err != nil {
		return 0, fmt.Errorf("stat dataset: %w", err)
	}
	return fi.ModTime().UnixNano(), nil
}

// CreateScheme is not supported by the file store.
func (r *Repo) CreateScheme(_ context.Context, _ *domscheme.Scheme) error {
	return domain.ErrStoreUnavailable
}

// UpdateScheme is not supported by the file store.
func (r *Repo) UpdateScheme(_ context.Context, _ *domscheme.Scheme) error {
	return domain.ErrStoreUnavailable
}

// DeleteScheme is not supported by the file store.
func (r *Repo) DeleteScheme(_ context.Context, _ string) error {
	return domain.ErrStoreUnavailable
}

// ListSubmissions is not supported by the file store.
func (r *Repo) ListSubmissions(_ context.Context) ([]domsub.Submission, error) {
	return nil, domain.ErrStoreUnavailable
}

// GetSubmission is not supported by the file store.
func (r *Repo) GetSubmission(_ context.Context, _ string) (domsub.Submission, error) {
	return domsub.Submission{}, domain.ErrStoreUnavailable
}

// CreateSubmission is not supported by the file store.
func (r *Repo) CreateSubmission(_ context.Context, _ *domsub.Submission) error {
	return domain.ErrStoreUnavailable
}

// UpdateSubmission is not supported by the file store.
func (r *Repo) UpdateSubmission(_ context.Context, _ *domsub.Submission) error {
	return domain.ErrStoreUnavailable
}

// Load decodes a scheme dataset file. Records are normalized but not
// validated, so a malformed rule is matched as given instead of hiding the
// rest of the dataset. A record without an id takes its slug as id.
func Load(path string) ([]domscheme.Scheme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(raw)
}

// Decode parses a JSON array of schemes.
func Decode(raw []byte) ([]domscheme.Scheme, error) {
	var out []domscheme.Scheme
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		s := &out[i]
		s.Normalize()
		if s.ID == "" {
			s.ID = s.Slug
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return out, nil
}
