package submission

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

var now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	sub, err := New("sub-1", scheme.Scheme{Name: "Free Cycles", Category: scheme.CategoryStudent}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != StatusPending {
		t.Errorf("Status = %q", sub.Status)
	}
	if sub.SchemeData.Status != scheme.StatusDraft {
		t.Errorf("draft status = %q", sub.SchemeData.Status)
	}
	if sub.SchemeData.Slug != "free-cycles" {
		t.Errorf("slug = %q", sub.SchemeData.Slug)
	}
	if !sub.SubmittedAt.Equal(now) {
		t.Errorf("SubmittedAt = %v", sub.SubmittedAt)
	}
}

func TestNew_MissingFields(t *testing.T) {
	if _, err := New("sub-1", scheme.Scheme{Category: scheme.CategoryStudent}, now); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing name: got %v", err)
	}
	if _, err := New("sub-1", scheme.Scheme{Name: "X"}, now); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing category: got %v", err)
	}
	if _, err := New("", scheme.Scheme{Name: "X", Category: scheme.CategoryJobs}, now); err == nil {
		t.Error("missing id: expected error")
	}
}

func TestReview(t *testing.T) {
	sub, _ := New("sub-1", scheme.Scheme{Name: "X", Category: scheme.CategoryJobs}, now)
	later := now.Add(time.Hour)

	reviewed, err := sub.Review(StatusApproved, "admin@example.com", "looks good", later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reviewed.Status != StatusApproved || reviewed.ReviewedBy != "admin@example.com" {
		t.Errorf("unexpected review result: %+v", reviewed)
	}
	if reviewed.ReviewedAt == nil || !reviewed.ReviewedAt.Equal(later) {
		t.Errorf("ReviewedAt = %v", reviewed.ReviewedAt)
	}
	if sub.Status != StatusPending {
		t.Error("Review must not mutate the receiver")
	}

	if _, err := reviewed.Review(StatusRejected, "x", "", later); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second review: expected ErrInvalidTransition, got %v", err)
	}
}

func TestReview_InvalidStatus(t *testing.T) {
	sub, _ := New("sub-1", scheme.Scheme{Name: "X", Category: scheme.CategoryJobs}, now)
	for _, st := range []Status{StatusPending, "archived", ""} {
		if _, err := sub.Review(st, "x", "", now); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("status %q: expected ErrInvalidInput, got %v", st, err)
		}
	}
}
