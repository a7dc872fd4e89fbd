package campaigns

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/cadence/pkg/cache"
	"github.com/JaimeStill/cadence/pkg/metrics"
	"github.com/JaimeStill/cadence/pkg/pagination"
	"github.com/JaimeStill/cadence/pkg/query"
	"github.com/JaimeStill/cadence/pkg/repository"
	"github.com/JaimeStill/cadence/pkg/storage"
)

var dbErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalidCampaign,
}

type repo struct {
	db         *sql.DB
	storage    storage.System
	corpus     *corpusLoader
	logger     *slog.Logger
	pagination pagination.Config
	cfg        Config
}

// New creates a campaign repository implementing the System interface.
func New(
	cfg Config,
	db *sql.DB,
	store storage.System,
	c cache.System,
	m *metrics.Metrics,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	logger = logger.With("system", "campaigns")
	return &repo{
		db:      db,
		storage: store,
		corpus: &corpusLoader{
			cfg:     cfg,
			db:      db,
			storage: store,
			cache:   c,
			metrics: m,
			logger:  logger,
		},
		logger:     logger,
		pagination: pagination,
		cfg:        cfg,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.cfg.MaxSnapshotSize.Int64())
}

func (r *repo) Corpus(ctx context.Context) ([]Campaign, error) {
	return r.corpus.load(ctx)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "CampaignID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count campaigns: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &rec, nil
}

// Import replaces the corpus snapshot blob and the cached corpus, then
// upserts every campaign in one transaction keyed on campaign_name.
func (r *repo) Import(ctx context.Context, snapshot []Campaign) (*ImportResult, error) {
	if err := Validate(snapshot); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if int64(len(raw)) > r.cfg.MaxSnapshotSize.Int64() {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotTooLarge, r.cfg.MaxSnapshotSize)
	}

	if err := r.storage.Upload(ctx, r.cfg.SnapshotKey, bytes.NewReader(raw), "application/json"); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	r.corpus.replace(ctx, raw)

	argSets := make([][]any, len(snapshot))
	for i, c := range snapshot {
		argSets[i] = upsertArgs(c)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		return repository.ExecEach(ctx, tx, upsertSQL, argSets)
	})
	if err != nil {
		r.logger.Error(
			"snapshot uploaded but metadata upsert failed",
			"key", r.cfg.SnapshotKey,
			"error", err,
		)
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("snapshot imported", "key", r.cfg.SnapshotKey, "campaigns", len(snapshot))
	return &ImportResult{
		Imported:    len(snapshot),
		SnapshotKey: r.cfg.SnapshotKey,
	}, nil
}
