package benchmarks

import (
	"time"

	"github.com/JaimeStill/cadence/internal/taxonomy"
)

// Similarity points.
const (
	bucketMatch        = 60
	topicRequired      = 40
	topicBonus         = 20
	monthFilterHit     = 20
	monthFilterNear    = 10
	sameMonthBonus     = 10
	adjacentMonthBonus = 5
	maxScore           = 100
)

// sendMonth is a campaign's send month; ok is false when send_date is malformed.
type sendMonth struct {
	month time.Month
	ok    bool
}

func monthOf(t time.Time, err error) sendMonth {
	if err != nil {
		return sendMonth{}
	}
	return sendMonth{month: t.Month(), ok: true}
}

// similarity rates how comparable a candidate is to the selected campaign,
// capped at 100. A different bucket always scores 0, as does a different
// topic when filterByTopic is set. Temporal points are skipped when a send
// month needed for the comparison is unknown.
func similarity(
	selected, candidate taxonomy.Classification,
	selectedMonth, candidateMonth sendMonth,
	filterByTopic bool,
	month MonthFilter,
) int {
	if selected.Bucket != candidate.Bucket {
		return 0
	}

	score := bucketMatch
	topicMatch := selected.Topic == candidate.Topic

	switch {
	case filterByTopic && !topicMatch:
		return 0
	case filterByTopic:
		score += topicRequired
	case topicMatch:
		score += topicBonus
	}

	return min(score+temporal(selectedMonth, candidateMonth, month), maxScore)
}

func temporal(selected, candidate sendMonth, month MonthFilter) int {
	if !candidate.ok {
		return 0
	}

	if month.IsSet() {
		switch {
		case month.Contains(candidate.month):
			return monthFilterHit
		case month.Adjacent(candidate.month):
			return monthFilterNear
		}
		return 0
	}

	if !selected.ok {
		return 0
	}

	switch monthsApart(int(selected.month), int(candidate.month)) {
	case 0:
		return sameMonthBonus
	case 1:
		return adjacentMonthBonus
	}
	return 0
}
