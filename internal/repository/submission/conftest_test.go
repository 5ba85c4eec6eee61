package submission

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

type mockStore struct {
	jsonSetFn  func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn  func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonMGetFn func(ctx context.Context, keys []string) ([][]byte, error)
	existsFn   func(ctx context.Context, key string) (bool, error)
	scanFn     func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, nil
}

func (m *mockStore) JSONMGet(ctx context.Context, keys []string) ([][]byte, error) {
	if m.jsonMGetFn != nil {
		return m.jsonMGetFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func testSubmission(t *testing.T, id string, at time.Time) domsub.Submission {
	t.Helper()
	s, err := domsub.New(id, scheme.Scheme{Name: "Solar Pump Subsidy", Category: scheme.CategoryFarmer}, at)
	if err != nil {
		t.Fatalf("new submission: %v", err)
	}
	return s
}
