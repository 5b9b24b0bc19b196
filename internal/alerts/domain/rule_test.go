package alerts

import (
	"testing"
	"time"

	assets "depot-twin/internal/assets/domain"
)

func TestComparator_Triggered(t *testing.T) {
	cases := []struct {
		comparator Comparator
		threshold  float64
		value      float64
		want       bool
	}{
		{CompGreater, 90, 91, true},
		{CompGreater, 90, 90, false},
		{CompLess, 10, 9, true},
		{CompLess, 10, 10, false},
		{CompGreaterOrEqual, 90, 90, true},
		{CompLessOrEqual, 10, 10, true},
		{CompEqual, 1, 1, true},
		{CompEqual, 1, 0, false},
		{CompNotEqual, 1, 0, true},
		{CompNotEqual, 1, 1, false},
	}
	for _, tc := range cases {
		rule := Rule{Comparator: tc.comparator, Threshold: tc.threshold}
		if got := rule.Triggered(tc.value); got != tc.want {
			t.Fatalf("%s %v vs %v: expected %v, got %v", tc.comparator, tc.value, tc.threshold, tc.want, got)
		}
	}
}

func TestRule_ClearedWithHysteresis(t *testing.T) {
	clear := 85.0
	rule := Rule{Comparator: CompGreater, Threshold: 90, ClearThreshold: &clear}

	if rule.Cleared(88) {
		t.Fatalf("value between clear and trigger thresholds must stay active")
	}
	if !rule.Cleared(84) {
		t.Fatalf("value below clear threshold should resolve")
	}
	if rule.Cleared(95) {
		t.Fatalf("triggering value should never clear")
	}
}

func TestRule_ClearedSymmetricWithoutClearThreshold(t *testing.T) {
	rule := Rule{Comparator: CompGreater, Threshold: 90}
	if !rule.Cleared(89) {
		t.Fatalf("without a clear threshold any non-trigger clears")
	}
	if rule.Cleared(91) {
		t.Fatalf("triggering value should not clear")
	}
}

func TestRule_Render(t *testing.T) {
	rule := Rule{
		Threshold:       90,
		MessageTemplate: "Tank {asset_id} at {value}% exceeds {threshold}%",
	}
	got := rule.Render("T1", 93.5)
	want := "Tank T1 at 93.50% exceeds 90%"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRule_Validate(t *testing.T) {
	rule := Rule{
		Name:            "tank-high-level",
		AssetKind:       assets.KindStorageTank,
		MetricName:      "level_percentage",
		Comparator:      CompGreater,
		Threshold:       90,
		MessageTemplate: "high level on {asset_id}",
	}
	if err := rule.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	bad := rule
	bad.Comparator = "~"
	if err := bad.Validate(); err == nil {
		t.Fatalf("invalid comparator accepted")
	}
}

func TestRuleSet_GroupsByKind(t *testing.T) {
	rules := []Rule{
		{Name: "a", AssetKind: assets.KindStorageTank},
		{Name: "b", AssetKind: assets.KindStorageTank},
		{Name: "c", AssetKind: assets.KindPump},
	}
	set := NewRuleSet(rules, time.Now())
	if set.Len() != 3 {
		t.Fatalf("expected 3 rules, got %d", set.Len())
	}
	if len(set.ForKind(assets.KindStorageTank)) != 2 {
		t.Fatalf("expected 2 tank rules")
	}
	if len(set.ForKind(assets.KindMeter)) != 0 {
		t.Fatalf("expected no meter rules")
	}
}
