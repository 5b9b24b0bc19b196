package application

import (
	"sync"

	alerts "depot-twin/internal/alerts/domain"
)

// RuleSnapshot shares the latest rule set between the scheduled evaluator
// and the ingestion path. The evaluation cycle refreshes it; readers get
// whichever snapshot was current when their message arrived.
type RuleSnapshot struct {
	mu      sync.RWMutex
	current *alerts.RuleSet
}

// Set replaces the current snapshot.
func (s *RuleSnapshot) Set(ruleSet *alerts.RuleSet) {
	s.mu.Lock()
	s.current = ruleSet
	s.mu.Unlock()
}

// Get returns the current snapshot, nil before the first refresh.
func (s *RuleSnapshot) Get() *alerts.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
