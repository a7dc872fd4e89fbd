package campaigns_test

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/pkg/cache"
	"github.com/JaimeStill/cadence/pkg/lifecycle"
	"github.com/JaimeStill/cadence/pkg/metrics"
	"github.com/JaimeStill/cadence/pkg/pagination"
	"github.com/JaimeStill/cadence/pkg/storage"
)

type fakeStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	downloads atomic.Int32
	gate      chan struct{}
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (f *fakeStorage) put(key, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = []byte(data)
}

func (f *fakeStorage) get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	return b, ok
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.get(key)
	f.downloads.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.get(key)
	return ok, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Start(*lifecycle.Coordinator) error { return nil }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes++
	return nil
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, source string) campaigns.Config {
	t.Helper()
	cfg := campaigns.Config{Source: source}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func testPagination() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fixture struct {
	sys     campaigns.System
	storage *fakeStorage
	cache   *fakeCache
	metrics *metrics.Metrics
	mock    sqlmock.Sqlmock
	cfg     campaigns.Config
}

func newFixture(t *testing.T, source string) *fixture {
	t.Helper()
	db, mock := newMockDB(t)
	f := &fixture{
		storage: newFakeStorage(),
		cache:   newFakeCache(),
		metrics: metrics.New(),
		mock:    mock,
		cfg:     testConfig(t, source),
	}
	f.sys = campaigns.New(f.cfg, db, f.storage, f.cache, f.metrics, discardLogger(), testPagination())
	return f
}

const sampleSnapshot = `[
  {"campaign_id": "c-1", "campaign_name": "Hot Topics: Acne", "send_date": "2024-03-15",
   "core_metrics": {"unique_open_rate": 22.5, "unique_click_rate": 3.1, "delivery_rate": 98.2},
   "volume_metrics": {"delivered": 12000}},
  {"campaign_name": "Weekly Newsletter", "send_date": "not-a-date",
   "core_metrics": {"unique_open_rate": 18.0, "unique_click_rate": 2.0, "delivery_rate": 97.0},
   "volume_metrics": {"delivered": 15000}}
]`
