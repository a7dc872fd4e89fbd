package campaigns

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/JaimeStill/cadence/pkg/query"
	"github.com/JaimeStill/cadence/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "campaigns", "c").
	Project("id", "ID").
	Project("campaign_id", "CampaignID").
	Project("campaign_name", "Name").
	Project("send_date", "SendDate").
	Project("unique_open_rate", "UniqueOpenRate").
	Project("unique_click_rate", "UniqueClickRate").
	Project("delivery_rate", "DeliveryRate").
	Project("delivered", "Delivered").
	Project("imported_at", "ImportedAt")

var defaultSort = query.SortField{
	Field:      "SendDate",
	Descending: true,
}

const upsertSQL = `
	INSERT INTO campaigns(campaign_id, campaign_name, send_date, unique_open_rate, unique_click_rate, delivery_rate, delivered)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (campaign_name) DO UPDATE SET
		campaign_id = EXCLUDED.campaign_id,
		send_date = EXCLUDED.send_date,
		unique_open_rate = EXCLUDED.unique_open_rate,
		unique_click_rate = EXCLUDED.unique_click_rate,
		delivery_rate = EXCLUDED.delivery_rate,
		delivered = EXCLUDED.delivered,
		imported_at = NOW()`

// Filters contains optional filtering criteria for campaign queries.
// Nil fields are ignored. SentAfter is inclusive, SentBefore exclusive.
type Filters struct {
	CampaignID *string    `json:"campaign_id,omitempty"`
	SentAfter  *time.Time `json:"sent_after,omitempty"`
	SentBefore *time.Time `json:"sent_before,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CampaignID", f.CampaignID).
		WhereSince("SendDate", f.SentAfter).
		WhereBefore("SendDate", f.SentBefore)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Dates use the send_date layout (YYYY-MM-DD).
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if id := values.Get("campaign_id"); id != "" {
		f.CampaignID = &id
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"sent_after", &f.SentAfter},
		{"sent_before", &f.SentBefore},
	} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, p.name, raw)
		}
		*p.dst = &t
	}

	return f, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r          Record
		campaignID sql.NullString
		sendDate   sql.NullTime
	)

	err := s.Scan(
		&r.ID,
		&campaignID,
		&r.Name,
		&sendDate,
		&r.CoreMetrics.UniqueOpenRate,
		&r.CoreMetrics.UniqueClickRate,
		&r.CoreMetrics.DeliveryRate,
		&r.VolumeMetrics.Delivered,
		&r.ImportedAt,
	)
	if err != nil {
		return Record{}, err
	}

	r.Campaign.ID = campaignID.String
	if sendDate.Valid {
		r.SendDate = sendDate.Time.Format(DateLayout)
	}
	return r, nil
}

func upsertArgs(c Campaign) []any {
	var campaignID sql.NullString
	if c.ID != "" {
		campaignID = sql.NullString{String: c.ID, Valid: true}
	}

	var sendDate sql.NullTime
	if t, err := c.SentAt(); err == nil {
		sendDate = sql.NullTime{Time: t, Valid: true}
	}

	return []any{
		campaignID,
		c.Name,
		sendDate,
		c.CoreMetrics.UniqueOpenRate,
		c.CoreMetrics.UniqueClickRate,
		c.CoreMetrics.DeliveryRate,
		c.VolumeMetrics.Delivered,
	}
}
