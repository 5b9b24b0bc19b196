package alerts

import "time"

// Alert lifecycle statuses.
const (
	StatusActive   = "ACTIVE"
	StatusResolved = "RESOLVED"
)

// Alert is one fired instance of a rule against an asset. At most one
// active alert exists per (asset, rule name) pair at any time.
type Alert struct {
	ID          int64
	AssetID     string
	RuleName    string
	Severity    string
	Status      string
	Message     string
	MetricName  string
	MetricValue float64
	Threshold   float64
	TriggeredAt time.Time
	ResolvedAt  *time.Time
}

// IsActive reports whether the alert has not been resolved yet.
func (a Alert) IsActive() bool {
	return a.Status == StatusActive
}
