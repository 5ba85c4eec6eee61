// Package postgres stores schemes and submissions as JSONB rows.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	domscheme "github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

const uniqueViolationCode = "23505"

// pool is the subset of *pgxpool.Pool the repository uses.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Repo implements both the scheme and submission repository contracts.
type Repo struct {
	db pool
}

// New wraps a connection pool.
func New(db pool) *Repo {
	return &Repo{db: db}
}

// Connect opens a pool for dsn and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return p, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// ListSchemes returns every stored scheme, oldest first.
func (r *Repo) ListSchemes(ctx context.Context) ([]domscheme.Scheme, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM schemes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	return collectDocs[domscheme.Scheme](rows)
}

// GetScheme returns a scheme by ID.
func (r *Repo) GetScheme(ctx context.Context, id string) (domscheme.Scheme, error) {
	var s domscheme.Scheme
	if err := r.getDoc(ctx, `SELECT doc FROM schemes WHERE id = $1`, id, &s); err != nil {
		return domscheme.Scheme{}, err
	}
	return s, nil
}

// CreateScheme inserts a scheme. A taken id or slug yields ErrAlreadyExists.
func (r *Repo) CreateScheme(ctx context.Context, s *domscheme.Scheme) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal scheme: %w", err)
	}
	return r.inCatalogTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO schemes (id, slug, category, status, doc, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.Slug, string(s.Category), string(s.Status), doc, s.CreatedAt, s.UpdatedAt,
		)
		return mapError(err)
	})
}

// UpdateScheme replaces an existing scheme.
func (r *Repo) UpdateScheme(ctx context.Context, s *domscheme.Scheme) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal scheme: %w", err)
	}
	return r.inCatalogTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE schemes SET slug = $2, category = $3, status = $4, doc = $5, updated_at = $6
			 WHERE id = $1`,
			s.ID, s.Slug, string(s.Category), string(s.Status), doc, s.UpdatedAt,
		)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// DeleteScheme removes a scheme.
func (r *Repo) DeleteScheme(ctx context.Context, id string) error {
	return r.inCatalogTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM schemes WHERE id = $1`, id)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Revision returns the catalog revision. Every scheme write bumps it in the same transaction.
func (r *Repo) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := r.db.QueryRow(ctx, `SELECT revision FROM catalog_meta WHERE id = 1`).Scan(&rev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("query revision: %w", err)
	}
	return rev, nil
}

// ListSubmissions returns all submissions, newest first.
func (r *Repo) ListSubmissions(ctx context.Context) ([]domsub.Submission, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM submissions ORDER BY submitted_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	return collectDocs[domsub.Submission](rows)
}

// GetSubmission returns a submission by ID.
func (r *Repo) GetSubmission(ctx context.Context, id string) (domsub.Submission, error) {
	var s domsub.Submission
	if err := r.getDoc(ctx, `SELECT doc FROM submissions WHERE id = $1`, id, &s); err != nil {
		return domsub.Submission{}, err
	}
	return s, nil
}

// CreateSubmission inserts a submission.
func (r *Repo) CreateSubmission(ctx context.Context, s *domsub.Submission) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO submissions (id, status, doc, submitted_at) VALUES ($1, $2, $3, $4)`,
		s.ID, string(s.Status), doc, s.SubmittedAt,
	)
	return mapError(err)
}

// UpdateSubmission replaces an existing submission.
func (r *Repo) UpdateSubmission(ctx context.Context, s *domsub.Submission) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE submissions SET status = $2, doc = $3 WHERE id = $1`,
		s.ID, string(s.Status), doc,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) getDoc(ctx context.Context, query, id string, dst any) error {
	var raw []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("query %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", id, err)
	}
	return nil
}

// inCatalogTx runs fn and bumps the catalog revision atomically with it.
func (r *Repo) inCatalogTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE catalog_meta SET revision = revision + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func collectDocs[T any](rows pgx.Rows) ([]T, error) {
	raws, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("unmarshal row: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// mapError translates constraint violations into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}
