// Package submission implements public scheme submissions and their review.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
	"github.com/kailas-cloud/schemefinder/internal/metrics"
)

// ReviewResult is a reviewed submission and, on approval, the published scheme.
type ReviewResult struct {
	Submission domsub.Submission `json:"submission"`
	Scheme     *scheme.Scheme    `json:"scheme,omitempty"`
}

// Service handles submission intake and review.
type Service struct {
	repo       Repository
	publisher  Publisher
	summarizer Summarizer
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// New creates a submission service. summarizer can be nil.
func New(repo Repository, publisher Publisher, summarizer Summarizer, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Submit stores a visitor's draft as a pending submission.
func (s *Service) Submit(ctx context.Context, draft scheme.Scheme) (domsub.Submission, error) {
	sub, err := domsub.New(s.newID(), draft, s.now())
	if err != nil {
		return domsub.Submission{}, err
	}
	if err := s.repo.CreateSubmission(ctx, &sub); err != nil {
		return domsub.Submission{}, fmt.Errorf("create submission: %w", err)
	}
	metrics.SubmissionsTotal.WithLabelValues(string(domsub.StatusPending)).Inc()
	s.logger.Info("Submission received",
		zap.String("id", sub.ID),
		zap.String("name", sub.SchemeData.Name),
		zap.String("category", string(sub.SchemeData.Category)),
	)
	return sub, nil
}

// List returns all submissions, newest first.
func (s *Service) List(ctx context.Context) ([]domsub.Submission, error) {
	subs, err := s.repo.ListSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Get returns a submission by ID.
func (s *Service) Get(ctx context.Context, id string) (domsub.Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return domsub.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// Review approves or rejects a pending submission. Approval publishes a
// complete draft; a draft missing publish-only fields is stored as an
// unpublished scheme for an administrator to finish.
func (s *Service) Review(ctx context.Context, id string, status domsub.Status, reviewer, notes string) (ReviewResult, error) {
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return ReviewResult{}, fmt.Errorf("get submission: %w", err)
	}
	reviewed, err := sub.Review(status, reviewer, notes, s.now())
	if err != nil {
		return ReviewResult{}, err
	}

	var res ReviewResult
	if status == domsub.StatusApproved {
		created, err := s.publish(ctx, reviewed, reviewer)
		if err != nil {
			return ReviewResult{}, fmt.Errorf("publish submission %s: %w", id, err)
		}
		res.Scheme = &created
	}

	if err := s.repo.UpdateSubmission(ctx, &reviewed); err != nil {
		if res.Scheme != nil {
			s.unpublish(ctx, res.Scheme.ID, reviewer)
		}
		return ReviewResult{}, fmt.Errorf("update submission: %w", err)
	}
	metrics.SubmissionsTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info("Submission reviewed",
		zap.String("id", id),
		zap.String("status", string(status)),
		zap.String("reviewer", reviewer),
	)
	res.Submission = reviewed
	return res, nil
}

func (s *Service) publish(ctx context.Context, sub domsub.Submission, reviewer string) (scheme.Scheme, error) {
	draft := sub.SchemeData
	draft.ID = ""
	if draft.Summary == "" {
		draft.Summary = sub.Summary
	}
	draft.Status = scheme.StatusPublished
	draft.Normalize()
	if draft.Validate() != nil {
		return s.publisher.CreateDraft(ctx, draft, reviewer)
	}
	return s.publisher.Create(ctx, draft, reviewer)
}

// unpublish removes a scheme created for a review whose submission could not
// be saved, so the catalog never holds a scheme for a pending submission.
func (s *Service) unpublish(ctx context.Context, schemeID, reviewer string) {
	if err := s.publisher.Delete(ctx, schemeID, reviewer); err != nil {
		s.logger.Error("Rollback of published scheme failed",
			zap.String("scheme_id", schemeID),
			zap.Error(err),
		)
	}
}

// Summarize drafts a reviewer summary with the configured provider and stores it.
func (s *Service) Summarize(ctx context.Context, id string) (domsub.Submission, error) {
	if s.summarizer == nil {
		return domsub.Submission{}, domain.ErrSummarizerDisabled
	}
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return domsub.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	text, err := s.summarizer.Summarize(ctx, sub.SchemeData)
	if err != nil {
		s.logger.Warn("Summary generation failed", zap.String("id", id), zap.Error(err))
		return domsub.Submission{}, fmt.Errorf("summarize %s: %w", id, err)
	}
	sub = sub.WithSummary(text)
	if err := s.repo.UpdateSubmission(ctx, &sub); err != nil {
		return domsub.Submission{}, fmt.Errorf("update submission: %w", err)
	}
	return sub, nil
}
