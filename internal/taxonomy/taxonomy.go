// Package taxonomy assigns campaigns to a bucket and topic from their names.
// Assignment is a pure function of the campaign name driven by an ordered,
// declarative rule table; the first matching rule wins.
package taxonomy

// Other is the bucket and topic assigned when no rule matches.
const Other = "Other"

// Classification is the derived (bucket, topic) pair for a campaign.
type Classification struct {
	Bucket string `json:"bucket"`
	Topic  string `json:"topic"`
}

// Unclassified returns the fallback classification.
func Unclassified() Classification {
	return Classification{Bucket: Other, Topic: Other}
}

// BucketInfo describes one bucket of the taxonomy in evaluation order.
type BucketInfo struct {
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

// NamedClassification pairs a campaign name with its classification.
type NamedClassification struct {
	CampaignName string `json:"campaign_name"`
	Classification
}

// ClassifyCommand carries campaign names to classify in one request.
type ClassifyCommand struct {
	CampaignNames []string `json:"campaign_names"`
}
