// Package campaigns implements the campaign corpus for Cadence.
// It loads the campaign snapshot that benchmarks run against, and
// manages campaign metadata in PostgreSQL and blob storage.
package campaigns

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format of send_date.
const DateLayout = "2006-01-02"

// Campaign is one record of the corpus snapshot.
// SendDate keeps the raw text so malformed dates are tolerated per record.
type Campaign struct {
	ID            string        `json:"campaign_id,omitempty"`
	Name          string        `json:"campaign_name"`
	SendDate      string        `json:"send_date"`
	CoreMetrics   CoreMetrics   `json:"core_metrics"`
	VolumeMetrics VolumeMetrics `json:"volume_metrics"`
}

// CoreMetrics holds the rate metrics that benchmarks compare.
type CoreMetrics struct {
	UniqueOpenRate  float64 `json:"unique_open_rate"`
	UniqueClickRate float64 `json:"unique_click_rate"`
	DeliveryRate    float64 `json:"delivery_rate"`
}

// VolumeMetrics holds absolute send counts.
type VolumeMetrics struct {
	Delivered int64 `json:"delivered"`
}

// SentAt parses the calendar date at the start of SendDate.
// A trailing time component ("2024-03-15T09:00:00Z") is ignored.
func (c Campaign) SentAt() (time.Time, error) {
	s := strings.TrimSpace(c.SendDate)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse send_date %q: %w", c.SendDate, err)
	}
	return t, nil
}

// Matches reports whether c is the campaign identified by id or name.
// A non-empty id matches campaign_id; otherwise name must match exactly.
func (c Campaign) Matches(id, name string) bool {
	if id != "" {
		return c.ID == id
	}
	return name != "" && c.Name == name
}

// Validate checks a campaign for import.
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: campaign_name required", ErrInvalidCampaign)
	}

	rates := map[string]float64{
		"unique_open_rate":  c.CoreMetrics.UniqueOpenRate,
		"unique_click_rate": c.CoreMetrics.UniqueClickRate,
		"delivery_rate":     c.CoreMetrics.DeliveryRate,
	}
	for name, v := range rates {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s: %s must be a non-negative number", ErrInvalidCampaign, c.Name, name)
		}
	}

	if c.VolumeMetrics.Delivered < 0 {
		return fmt.Errorf("%w: %s: delivered must not be negative", ErrInvalidCampaign, c.Name)
	}
	return nil
}

// Record is a campaign row persisted in PostgreSQL.
type Record struct {
	ID uuid.UUID `json:"id"`
	Campaign
	ImportedAt time.Time `json:"imported_at"`
}

// ImportResult reports the outcome of a snapshot import.
type ImportResult struct {
	Imported    int    `json:"imported"`
	SnapshotKey string `json:"snapshot_key"`
}

// Validate checks a snapshot for import: it must be non-empty, every
// campaign must be valid, and names must be unique.
func Validate(snapshot []Campaign) error {
	if len(snapshot) == 0 {
		return ErrEmptySnapshot
	}

	seen := make(map[string]struct{}, len(snapshot))
	for i, c := range snapshot {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("campaign %d: %w", i, err)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate campaign_name %q", ErrInvalidCampaign, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
