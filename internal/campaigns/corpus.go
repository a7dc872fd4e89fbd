package campaigns

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/cadence/pkg/cache"
	"github.com/JaimeStill/cadence/pkg/metrics"
	"github.com/JaimeStill/cadence/pkg/query"
	"github.com/JaimeStill/cadence/pkg/repository"
	"github.com/JaimeStill/cadence/pkg/storage"
)

// DecodeSnapshot parses a snapshot payload. The payload must be a JSON array
// of campaigns; anything else yields ErrCorpusUnavailable.
func DecodeSnapshot(raw []byte) ([]Campaign, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: snapshot is not a campaign list", ErrCorpusUnavailable)
	}

	var snapshot []Campaign
	if err := json.Unmarshal(trimmed, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %w", ErrCorpusUnavailable, err)
	}
	return snapshot, nil
}

type corpusLoader struct {
	cfg     Config
	db      *sql.DB
	storage storage.System
	cache   cache.System
	metrics *metrics.Metrics
	logger  *slog.Logger
	group   singleflight.Group

	// mu orders cache writes against replace. generation counts imports;
	// a fetch started under an older generation does not write the cache.
	mu         sync.Mutex
	generation uint64
}

// load returns the corpus, collapsing concurrent loads into one fetch.
// The fetch is detached from the first caller's cancellation so a
// disconnecting client does not fail the callers sharing its result.
func (l *corpusLoader) load(ctx context.Context) ([]Campaign, error) {
	ch := l.group.DoChan(l.cfg.Source, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.FetchTimeoutDuration())
		defer cancel()
		return l.fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Campaign), nil
	}
}

func (l *corpusLoader) fetch(ctx context.Context) ([]Campaign, error) {
	var (
		snapshot []Campaign
		result   string
		err      error
	)

	switch l.cfg.Source {
	case SourceDatabase:
		snapshot, err = l.fromDatabase(ctx)
		result = "fetched"
	default:
		snapshot, result, err = l.fromSnapshot(ctx)
	}

	if err != nil {
		l.metrics.CorpusLoads.WithLabelValues(l.cfg.Source, "error").Inc()
		return nil, err
	}

	l.metrics.CorpusLoads.WithLabelValues(l.cfg.Source, result).Inc()
	l.metrics.CorpusSize.Set(float64(len(snapshot)))
	l.logger.Debug("corpus loaded", "source", l.cfg.Source, "result", result, "campaigns", len(snapshot))
	return snapshot, nil
}

func (l *corpusLoader) fromSnapshot(ctx context.Context) ([]Campaign, string, error) {
	key := l.cacheKey()
	gen := l.currentGeneration()

	raw, err := l.cache.Get(ctx, key)
	switch {
	case err == nil:
		snapshot, decodeErr := DecodeSnapshot(raw)
		if decodeErr == nil {
			return snapshot, "cache_hit", nil
		}
		l.logger.Warn("discarding undecodable cached corpus", "key", key, "error", decodeErr)
		l.invalidate(ctx)
	case !errors.Is(err, cache.ErrMiss):
		l.logger.Warn("corpus cache read failed", "key", key, "error", err)
	}

	raw, err = l.download(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}

	snapshot, err := DecodeSnapshot(raw)
	if err != nil {
		return nil, "", err
	}

	l.store(ctx, gen, raw)
	return snapshot, "fetched", nil
}

func (l *corpusLoader) download(ctx context.Context) ([]byte, error) {
	body, err := l.storage.Download(ctx, l.cfg.SnapshotKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	limit := l.cfg.MaxSnapshotSize.Int64()
	raw, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", l.cfg.SnapshotKey, err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrSnapshotTooLarge, l.cfg.SnapshotKey, l.cfg.MaxSnapshotSize)
	}
	return raw, nil
}

func (l *corpusLoader) fromDatabase(ctx context.Context) ([]Campaign, error) {
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "SendDate"}, query.SortField{Field: "Name"}).
		Build()

	records, err := repository.QueryMany(ctx, l.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("%w: query campaigns: %w", ErrCorpusUnavailable, err)
	}

	snapshot := make([]Campaign, len(records))
	for i, r := range records {
		snapshot[i] = r.Campaign
	}
	return snapshot, nil
}

func (l *corpusLoader) currentGeneration() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// store caches raw unless an import replaced the snapshot after gen.
func (l *corpusLoader) store(ctx context.Context, gen uint64, raw []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debug("skipping cache write for superseded corpus", "generation", gen, "current", l.generation)
		return
	}
	if err := l.cache.Set(ctx, l.cacheKey(), raw, l.cfg.CacheTTLDuration()); err != nil {
		l.logger.Warn("corpus cache write failed", "key", l.cacheKey(), "error", err)
	}
}

// replace installs an imported snapshot: in-flight fetches are detached
// from new callers and barred from caching, and raw becomes the cached
// corpus. A failed write drops the entry so the next load downloads.
func (l *corpusLoader) replace(ctx context.Context, raw []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	l.group.Forget(l.cfg.Source)

	if err := l.cache.Set(ctx, l.cacheKey(), raw, l.cfg.CacheTTLDuration()); err != nil {
		l.logger.Warn("corpus cache refresh failed", "key", l.cacheKey(), "error", err)
		l.invalidate(ctx)
	}
}

func (l *corpusLoader) invalidate(ctx context.Context) {
	if err := l.cache.Delete(ctx, l.cacheKey()); err != nil {
		l.logger.Warn("corpus cache invalidation failed", "error", err)
	}
}

func (l *corpusLoader) cacheKey() string {
	return "corpus:" + l.cfg.SnapshotKey
}
