package taxonomy

import (
	_ "embed"
	"sync"
)

//go:embed rules.yaml
var defaultRules []byte

// Classifier evaluates an immutable, compiled rule table.
// It is safe for concurrent use.
type Classifier struct {
	rules []bucketRule
}

// Load parses and compiles a YAML rule table.
func Load(data []byte) (*Classifier, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return New(doc)
}

// New compiles a parsed rule table.
func New(doc *Document) (*Classifier, error) {
	rules, err := compileDocument(doc)
	if err != nil {
		return nil, err
	}
	return &Classifier{rules: rules}, nil
}

var loadDefault = sync.OnceValue(func() *Classifier {
	c, err := Load(defaultRules)
	if err != nil {
		panic("taxonomy: embedded rules invalid: " + err.Error())
	}
	return c
})

// Default returns the classifier compiled from the embedded rule table.
func Default() *Classifier {
	return loadDefault()
}

// Classify assigns a bucket and topic to a campaign name. It never fails:
// names matching no rule are Unclassified.
func (c *Classifier) Classify(name string) Classification {
	n := normalize(name)
	if n == "" {
		return Unclassified()
	}

	for _, b := range c.rules {
		if !b.test.matches(n) {
			continue
		}

		topic := Other
		for _, t := range b.topics {
			if t.test.matches(n) {
				topic = t.name
				break
			}
		}

		return Classification{Bucket: b.name, Topic: topic}
	}

	return Unclassified()
}

// ClassifyAll classifies each name, preserving input order.
func (c *Classifier) ClassifyAll(names []string) []NamedClassification {
	out := make([]NamedClassification, len(names))
	for i, name := range names {
		out[i] = NamedClassification{
			CampaignName:   name,
			Classification: c.Classify(name),
		}
	}
	return out
}

// Buckets returns the taxonomy in evaluation order, ending with the
// Other fallback.
func (c *Classifier) Buckets() []BucketInfo {
	out := make([]BucketInfo, 0, len(c.rules)+1)
	for _, b := range c.rules {
		topics := make([]string, 0, len(b.topics)+1)
		for _, t := range b.topics {
			topics = append(topics, t.name)
		}
		topics = append(topics, Other)
		out = append(out, BucketInfo{Name: b.name, Topics: topics})
	}
	return append(out, BucketInfo{Name: Other, Topics: []string{Other}})
}

// BucketOrder returns the evaluation index of a bucket name. Unknown buckets
// and Other sort last.
func (c *Classifier) BucketOrder(bucket string) int {
	for i, b := range c.rules {
		if b.name == bucket {
			return i
		}
	}
	return len(c.rules)
}
