package scheme

import (
	"context"
	"testing"

	domscheme "github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn  func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn  func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonMGetFn func(ctx context.Context, keys []string) ([][]byte, error)
	delFn      func(ctx context.Context, key string) error
	existsFn   func(ctx context.Context, key string) (bool, error)
	scanFn     func(ctx context.Context, pattern string) ([]string, error)
	getFn      func(ctx context.Context, key string) ([]byte, error)
	incrByFn   func(ctx context.Context, key string, val int64) (int64, error)

	incrCalls int
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

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
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

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	m.incrCalls++
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return int64(m.incrCalls), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "sf:"), ms
}

func testScheme(t *testing.T) domscheme.Scheme {
	t.Helper()
	return domscheme.Scheme{
		ID:        "pm-kisan",
		Slug:      "pm-kisan",
		Name:      "PM Kisan",
		Category:  domscheme.CategoryFarmer,
		States:    domscheme.AllStates(),
		ApplyLink: "https://pmkisan.gov.in",
		Rules: domscheme.Rules{
			MinAge:    18,
			IncomeMax: domscheme.Capped(300000),
			Gender:    domscheme.GenderAny,
		},
		Status: domscheme.StatusPublished,
	}
}
