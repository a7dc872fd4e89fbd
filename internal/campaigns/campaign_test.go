package campaigns_test

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/cadence/internal/campaigns"
)

func TestSentAt(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		want    time.Time
		wantErr bool
	}{
		{"date", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"timestamp suffix", "2024-03-15T09:30:00Z", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"surrounding space", " 2024-12-01 ", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "not-a-date", time.Time{}, true},
		{"empty", "", time.Time{}, true},
		{"us format", "03/15/2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := campaigns.Campaign{SendDate: tt.date}.SentAt()
			if (err != nil) != tt.wantErr {
				t.Fatalf("SentAt(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("SentAt(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	c := campaigns.Campaign{ID: "c-1", Name: "Weekly Newsletter"}

	tests := []struct {
		name   string
		id     string
		byName string
		want   bool
	}{
		{"id match", "c-1", "", true},
		{"id wins over name", "c-2", "Weekly Newsletter", false},
		{"name match", "", "Weekly Newsletter", true},
		{"name is exact", "", "weekly newsletter", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Matches(tt.id, tt.byName); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.id, tt.byName, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := campaigns.Campaign{Name: "A", CoreMetrics: campaigns.CoreMetrics{UniqueOpenRate: 20}}

	tests := []struct {
		name     string
		snapshot []campaigns.Campaign
		want     error
	}{
		{"valid", []campaigns.Campaign{valid}, nil},
		{"empty", nil, campaigns.ErrEmptySnapshot},
		{"blank name", []campaigns.Campaign{{Name: "  "}}, campaigns.ErrInvalidCampaign},
		{"duplicate", []campaigns.Campaign{valid, valid}, campaigns.ErrInvalidCampaign},
		{"negative rate", []campaigns.Campaign{{Name: "A", CoreMetrics: campaigns.CoreMetrics{DeliveryRate: -1}}}, campaigns.ErrInvalidCampaign},
		{"nan rate", []campaigns.Campaign{{Name: "A", CoreMetrics: campaigns.CoreMetrics{UniqueClickRate: math.NaN()}}}, campaigns.ErrInvalidCampaign},
		{"negative delivered", []campaigns.Campaign{{Name: "A", VolumeMetrics: campaigns.VolumeMetrics{Delivered: -5}}}, campaigns.ErrInvalidCampaign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := campaigns.Validate(tt.snapshot)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeSnapshot(t *testing.T) {
	got, err := campaigns.DecodeSnapshot([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("length: got %d, want 2", len(got))
	}
	if got[0].ID != "c-1" || got[0].CoreMetrics.UniqueOpenRate != 22.5 || got[0].VolumeMetrics.Delivered != 12000 {
		t.Errorf("first: got %+v", got[0])
	}
	if got[1].SendDate != "not-a-date" {
		t.Errorf("malformed date should be kept verbatim, got %q", got[1].SendDate)
	}

	for _, payload := range []string{`{"campaigns": []}`, `null`, ``, `"x"`, `[{"campaign_name": 5}]`} {
		t.Run(payload, func(t *testing.T) {
			if _, err := campaigns.DecodeSnapshot([]byte(payload)); !errors.Is(err, campaigns.ErrCorpusUnavailable) {
				t.Errorf("error: got %v, want ErrCorpusUnavailable", err)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values, _ := url.ParseQuery("campaign_id=c-1&sent_after=2024-01-01&sent_before=2024-07-01")
	f, err := campaigns.FiltersFromQuery(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.CampaignID == nil || *f.CampaignID != "c-1" {
		t.Errorf("campaign_id: got %v", f.CampaignID)
	}
	if f.SentAfter == nil || f.SentAfter.Month() != time.January {
		t.Errorf("sent_after: got %v", f.SentAfter)
	}
	if f.SentBefore == nil || f.SentBefore.Month() != time.July {
		t.Errorf("sent_before: got %v", f.SentBefore)
	}

	values, _ = url.ParseQuery("sent_after=yesterday")
	if _, err := campaigns.FiltersFromQuery(values); !errors.Is(err, campaigns.ErrInvalidFilter) {
		t.Errorf("error: got %v, want ErrInvalidFilter", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := campaigns.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Source != campaigns.SourceBlob || cfg.SnapshotKey != "campaigns/latest.json" {
			t.Errorf("defaults: got %+v", cfg)
		}
		if cfg.CacheTTLDuration() != 5*time.Minute || cfg.FetchTimeoutDuration() != 30*time.Second {
			t.Errorf("durations: got %v / %v", cfg.CacheTTLDuration(), cfg.FetchTimeoutDuration())
		}
		if cfg.MaxSnapshotSize.Int64() != 64<<20 {
			t.Errorf("max_snapshot_size: got %d", cfg.MaxSnapshotSize.Int64())
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_CORPUS_SOURCE", "database")
		t.Setenv("TEST_CORPUS_MAX", "1MB")

		cfg := campaigns.Config{}
		err := cfg.Finalize(&campaigns.Env{Source: "TEST_CORPUS_SOURCE", MaxSnapshotSize: "TEST_CORPUS_MAX"})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Source != campaigns.SourceDatabase || cfg.MaxSnapshotSize.Int64() != 1<<20 {
			t.Errorf("env: got %+v", cfg)
		}
	})

	t.Run("invalid source", func(t *testing.T) {
		cfg := campaigns.Config{Source: "ftp"}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "invalid source") {
			t.Errorf("error: got %v", err)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{campaigns.ErrNotFound, 404},
		{campaigns.ErrDuplicate, 409},
		{campaigns.ErrSnapshotTooLarge, 413},
		{campaigns.ErrInvalidCampaign, 400},
		{campaigns.ErrEmptySnapshot, 400},
		{campaigns.ErrInvalidFilter, 400},
		{campaigns.ErrCorpusUnavailable, 500},
	}

	for _, tt := range tests {
		if got := campaigns.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
