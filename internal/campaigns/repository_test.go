package campaigns_test

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/pkg/pagination"
)

var recordColumns = []string{
	"id", "campaign_id", "campaign_name", "send_date",
	"unique_open_rate", "unique_click_rate", "delivery_rate", "delivered", "imported_at",
}

func TestList(t *testing.T) {
	f := newFixture(t, campaigns.SourceBlob)
	now := time.Now().UTC().Truncate(time.Second)
	search := "acne"
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM public.campaigns c WHERE (c.campaign_name ILIKE $1 OR c.campaign_id ILIKE $2) AND c.send_date >= $3",
	)).
		WithArgs("%acne%", "%acne%", after).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	f.mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.send_date DESC LIMIT 20 OFFSET 20")).
		WithArgs("%acne%", "%acne%", after).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(uuid.NewString(), "c-9", "Hot Topics: Acne", now, 20.0, 2.0, 99.0, int64(100), now))

	page := pagination.PageRequest{Page: 2, Search: &search}
	result, err := f.sys.List(context.Background(), page, campaigns.Filters{SentAfter: &after})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if result.Total != 21 || result.TotalPages != 2 || result.Page != 2 {
		t.Errorf("page metadata: got %+v", result)
	}
	if len(result.Data) != 1 || result.Data[0].Campaign.ID != "c-9" {
		t.Errorf("data: got %+v", result.Data)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFind(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	t.Run("found", func(t *testing.T) {
		f := newFixture(t, campaigns.SourceBlob)
		now := time.Now().UTC().Truncate(time.Second)

		f.mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(recordColumns).
				AddRow(id.String(), nil, "Weekly Newsletter", now, 18.0, 2.0, 97.0, int64(15000), now))

		rec, err := f.sys.Find(context.Background(), id)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if rec.ID != id || rec.Name != "Weekly Newsletter" {
			t.Errorf("record: got %+v", rec)
		}
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, campaigns.SourceBlob)
		f.mock.ExpectQuery("WHERE c.id").WithArgs(id).WillReturnRows(sqlmock.NewRows(recordColumns))

		if _, err := f.sys.Find(context.Background(), id); !errors.Is(err, campaigns.ErrNotFound) {
			t.Errorf("error: got %v, want ErrNotFound", err)
		}
	})
}

func TestImport(t *testing.T) {
	f := newFixture(t, campaigns.SourceBlob)
	ctx := context.Background()

	f.storage.put(f.cfg.SnapshotKey, sampleSnapshot)
	if _, err := f.sys.Corpus(ctx); err != nil {
		t.Fatalf("warm corpus: %v", err)
	}
	if f.cache.len() != 1 {
		t.Fatal("corpus should be cached before import")
	}

	snapshot := []campaigns.Campaign{
		{ID: "c-1", Name: "Hot Topics: Acne", SendDate: "2024-03-15", CoreMetrics: campaigns.CoreMetrics{UniqueOpenRate: 24}},
		{Name: "Weekly Newsletter", SendDate: "bad", CoreMetrics: campaigns.CoreMetrics{UniqueOpenRate: 19}},
		{Name: "Survey Says", SendDate: "2024-04-01", CoreMetrics: campaigns.CoreMetrics{UniqueOpenRate: 11}},
	}

	f.mock.ExpectBegin()
	prep := f.mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO campaigns"))
	for _, c := range snapshot {
		prep.ExpectExec().
			WithArgs(sqlmock.AnyArg(), c.Name, sqlmock.AnyArg(), c.CoreMetrics.UniqueOpenRate, 0.0, 0.0, int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()

	result, err := f.sys.Import(ctx, snapshot)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 3 || result.SnapshotKey != f.cfg.SnapshotKey {
		t.Errorf("result: got %+v", result)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
	if f.cache.len() != 1 {
		t.Error("import should cache the new corpus")
	}

	reloaded, err := f.sys.Corpus(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded) != 3 || reloaded[2].Name != "Survey Says" {
		t.Errorf("reloaded corpus: got %+v", reloaded)
	}
	if n := f.storage.downloads.Load(); n != 1 {
		t.Errorf("downloads: got %d, want 1 (reload should hit the refreshed cache)", n)
	}
}

func TestImportSupersedesInFlightLoad(t *testing.T) {
	f := newFixture(t, campaigns.SourceBlob)
	ctx := context.Background()

	f.storage.put(f.cfg.SnapshotKey, sampleSnapshot)
	f.storage.gate = make(chan struct{})

	stale := make(chan int, 1)
	go func() {
		got, err := f.sys.Corpus(ctx)
		if err != nil {
			t.Errorf("in-flight load: %v", err)
		}
		stale <- len(got)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for f.storage.downloads.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("load never reached storage")
		}
		time.Sleep(time.Millisecond)
	}

	snapshot := []campaigns.Campaign{
		{Name: "Hot Topics: Acne", SendDate: "2024-03-15"},
		{Name: "Weekly Newsletter", SendDate: "2024-03-22"},
		{Name: "Survey Says", SendDate: "2024-04-01"},
	}
	f.mock.ExpectBegin()
	prep := f.mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO campaigns"))
	for range snapshot {
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()

	if _, err := f.sys.Import(ctx, snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}

	close(f.storage.gate)
	if n := <-stale; n != 2 {
		t.Errorf("in-flight load: got %d campaigns, want the pre-import 2", n)
	}

	current, err := f.sys.Corpus(ctx)
	if err != nil {
		t.Fatalf("corpus after import: %v", err)
	}
	if len(current) != 3 {
		t.Errorf("corpus after import: got %d campaigns, want 3", len(current))
	}
	if n := f.storage.downloads.Load(); n != 1 {
		t.Errorf("downloads: got %d, want 1", n)
	}
}

func TestImportMapsConstraintViolation(t *testing.T) {
	f := newFixture(t, campaigns.SourceBlob)

	f.mock.ExpectBegin()
	f.mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO campaigns")).
		ExpectExec().
		WillReturnError(&pgconn.PgError{
			Code:           "23514",
			Message:        "new row violates check constraint",
			ConstraintName: "campaigns_rates_check",
		})
	f.mock.ExpectRollback()

	_, err := f.sys.Import(context.Background(), []campaigns.Campaign{{Name: "Weekly Newsletter"}})
	if !errors.Is(err, campaigns.ErrInvalidCampaign) {
		t.Fatalf("error: got %v, want ErrInvalidCampaign", err)
	}
	if got := campaigns.MapHTTPStatus(err); got != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", got)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestImportRejectsInvalidSnapshot(t *testing.T) {
	f := newFixture(t, campaigns.SourceBlob)

	_, err := f.sys.Import(context.Background(), []campaigns.Campaign{{Name: ""}})
	if !errors.Is(err, campaigns.ErrInvalidCampaign) {
		t.Errorf("error: got %v, want ErrInvalidCampaign", err)
	}
	if _, ok := f.storage.get(f.cfg.SnapshotKey); ok {
		t.Error("invalid snapshot must not be uploaded")
	}
}

func TestImportUploadFailure(t *testing.T) {
	f := newFixture(t, campaigns.SourceBlob)
	f.storage.uploadErr = errors.New("throttled")

	_, err := f.sys.Import(context.Background(), []campaigns.Campaign{{Name: "A"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no SQL should run after a failed upload: %v", err)
	}
}
