package taxonomy

import (
	"fmt"
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a rule table.
type Document struct {
	TopicSets map[string][]TopicSpec `yaml:"topic_sets"`
	Buckets   []BucketSpec           `yaml:"buckets"`
}

// TestSpec is a single pattern test. It fires when any pattern matches or any
// keyword occurs in the name, and no exclude pattern matches.
type TestSpec struct {
	Patterns []string `yaml:"patterns"`
	Keywords []string `yaml:"keywords"`
	Exclude  []string `yaml:"exclude"`
}

// TopicSpec assigns a topic within a bucket.
type TopicSpec struct {
	Name     string `yaml:"name"`
	TestSpec `yaml:",inline"`
}

// BucketSpec assigns a bucket. Topics are either listed inline or referenced
// from a named topic set, not both.
type BucketSpec struct {
	Name     string      `yaml:"name"`
	TopicSet string      `yaml:"topic_set"`
	Topics   []TopicSpec `yaml:"topics"`
	TestSpec `yaml:",inline"`
}

type test struct {
	patterns []*regexp.Regexp
	exclude  []*regexp.Regexp
	keywords *ahocorasick.Matcher
}

type topicRule struct {
	name string
	test test
}

type bucketRule struct {
	name   string
	test   test
	topics []topicRule
}

// ParseDocument decodes a YAML rule table.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return &doc, nil
}

func compileDocument(doc *Document) ([]bucketRule, error) {
	if len(doc.Buckets) == 0 {
		return nil, fmt.Errorf("%w: no buckets defined", ErrInvalidRules)
	}

	seen := make(map[string]bool, len(doc.Buckets))
	rules := make([]bucketRule, 0, len(doc.Buckets))

	for _, spec := range doc.Buckets {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: bucket name required", ErrInvalidRules)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate bucket %q", ErrInvalidRules, spec.Name)
		}
		seen[spec.Name] = true

		t, err := compileTest(spec.TestSpec)
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", spec.Name, err)
		}

		topicSpecs, err := resolveTopics(doc, spec)
		if err != nil {
			return nil, err
		}

		topics := make([]topicRule, 0, len(topicSpecs))
		for _, ts := range topicSpecs {
			if ts.Name == "" {
				return nil, fmt.Errorf("%w: bucket %q: topic name required", ErrInvalidRules, spec.Name)
			}
			tt, err := compileTest(ts.TestSpec)
			if err != nil {
				return nil, fmt.Errorf("bucket %q topic %q: %w", spec.Name, ts.Name, err)
			}
			topics = append(topics, topicRule{name: ts.Name, test: tt})
		}

		rules = append(rules, bucketRule{
			name:   spec.Name,
			test:   t,
			topics: topics,
		})
	}

	return rules, nil
}

func resolveTopics(doc *Document, spec BucketSpec) ([]TopicSpec, error) {
	if spec.TopicSet == "" {
		return spec.Topics, nil
	}
	if len(spec.Topics) > 0 {
		return nil, fmt.Errorf(
			"%w: bucket %q declares both topics and topic_set",
			ErrInvalidRules, spec.Name,
		)
	}

	set, ok := doc.TopicSets[spec.TopicSet]
	if !ok {
		return nil, fmt.Errorf(
			"%w: bucket %q references unknown topic set %q",
			ErrInvalidRules, spec.Name, spec.TopicSet,
		)
	}
	return set, nil
}

func compileTest(spec TestSpec) (test, error) {
	var t test

	keywords := make([]string, 0, len(spec.Keywords))
	for _, kw := range spec.Keywords {
		if kw = normalize(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if len(spec.Patterns) == 0 && len(keywords) == 0 {
		return t, fmt.Errorf("%w: test needs at least one pattern or keyword", ErrInvalidRules)
	}

	patterns, err := compilePatterns(spec.Patterns)
	if err != nil {
		return t, err
	}
	exclude, err := compilePatterns(spec.Exclude)
	if err != nil {
		return t, err
	}

	t.patterns = patterns
	t.exclude = exclude
	if len(keywords) > 0 {
		t.keywords = ahocorasick.NewStringMatcher(keywords)
	}
	return t, nil
}

func compilePatterns(src []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(src))
	for _, p := range src {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRules, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// matches expects name to be normalized.
func (t test) matches(name string) bool {
	if !t.hit(name) {
		return false
	}
	for _, re := range t.exclude {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}

func (t test) hit(name string) bool {
	for _, re := range t.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	if t.keywords != nil {
		return len(t.keywords.MatchThreadSafe([]byte(name))) > 0
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
