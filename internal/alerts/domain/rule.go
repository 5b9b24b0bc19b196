package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	assets "depot-twin/internal/assets/domain"
)

// Comparator is the threshold comparison of a rule.
type Comparator string

const (
	CompGreater        Comparator = ">"
	CompLess           Comparator = "<"
	CompGreaterOrEqual Comparator = ">="
	CompLessOrEqual    Comparator = "<="
	CompEqual          Comparator = "=="
	CompNotEqual       Comparator = "!="
)

// Valid reports whether the comparator is supported.
func (c Comparator) Valid() bool {
	switch c {
	case CompGreater, CompLess, CompGreaterOrEqual, CompLessOrEqual, CompEqual, CompNotEqual:
		return true
	default:
		return false
	}
}

// Severity levels carried on rules and alert instances.
const (
	SeverityInfo     = "Info"
	SeverityWarning  = "Warning"
	SeverityCritical = "Critical"
)

// Rule is a threshold alert rule scoped to one asset kind. ClearThreshold
// and DurationSeconds are optional: a zero-valued ClearThreshold pointer
// means symmetric clearing and DurationSeconds == 0 means immediate trigger.
type Rule struct {
	ID              int64
	AssetKind       assets.Kind
	MetricName      string
	Comparator      Comparator
	Threshold       float64
	ClearThreshold  *float64
	DurationSeconds int
	Name            string
	MessageTemplate string
	Severity        string
	Enabled         bool
	Description     string
}

// Validate checks rule invariants.
func (r Rule) Validate() error {
	if r.Name == "" {
		return errors.New("alert rule: empty name")
	}
	if !r.AssetKind.Valid() {
		return errors.New("alert rule: invalid asset kind")
	}
	if r.MetricName == "" {
		return errors.New("alert rule: empty metric name")
	}
	if !r.Comparator.Valid() {
		return errors.New("alert rule: invalid comparator")
	}
	if r.MessageTemplate == "" {
		return errors.New("alert rule: empty message template")
	}
	return nil
}

// Triggered evaluates the rule's comparator against a metric value.
func (r Rule) Triggered(value float64) bool {
	switch r.Comparator {
	case CompGreater:
		return value > r.Threshold
	case CompLess:
		return value < r.Threshold
	case CompGreaterOrEqual:
		return value >= r.Threshold
	case CompLessOrEqual:
		return value <= r.Threshold
	case CompEqual:
		return value == r.Threshold
	case CompNotEqual:
		return value != r.Threshold
	default:
		return false
	}
}

// Cleared reports whether a non-triggering value should resolve an alert.
// With a clear threshold configured the metric must cross it in the safe
// direction; flapping at the edge of the primary threshold stays active.
func (r Rule) Cleared(value float64) bool {
	if r.ClearThreshold == nil {
		return !r.Triggered(value)
	}
	switch r.Comparator {
	case CompGreater, CompGreaterOrEqual:
		return value < *r.ClearThreshold
	case CompLess, CompLessOrEqual:
		return value > *r.ClearThreshold
	default:
		return !r.Triggered(value)
	}
}

// Render substitutes the asset id, formatted value and threshold into the
// rule's message template.
func (r Rule) Render(assetID string, value float64) string {
	msg := r.MessageTemplate
	msg = strings.ReplaceAll(msg, "{asset_id}", assetID)
	msg = strings.ReplaceAll(msg, "{value}", fmt.Sprintf("%.2f", value))
	msg = strings.ReplaceAll(msg, "{threshold}", fmt.Sprintf("%g", r.Threshold))
	return msg
}

// RuleSet is an immutable snapshot of enabled rules grouped by asset kind,
// taken at the start of each evaluation cycle.
type RuleSet struct {
	byKind map[assets.Kind][]Rule
	loaded time.Time
}

// NewRuleSet groups rules by asset kind.
func NewRuleSet(rules []Rule, loadedAt time.Time) *RuleSet {
	byKind := make(map[assets.Kind][]Rule)
	for _, rule := range rules {
		byKind[rule.AssetKind] = append(byKind[rule.AssetKind], rule)
	}
	return &RuleSet{byKind: byKind, loaded: loadedAt}
}

// ForKind returns the rules applying to one asset kind.
func (s *RuleSet) ForKind(kind assets.Kind) []Rule {
	if s == nil {
		return nil
	}
	return s.byKind[kind]
}

// Len returns the total number of rules in the snapshot.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, rules := range s.byKind {
		n += len(rules)
	}
	return n
}

// LoadedAt returns when the snapshot was taken.
func (s *RuleSet) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loaded
}
