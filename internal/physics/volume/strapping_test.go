package volume

import (
	"errors"
	"math"
	"testing"
)

func testTable(t *testing.T) *StrappingTable {
	t.Helper()
	table, err := NewStrappingTable([]StrappingPoint{
		{LevelMM: 10000, VolumeLitres: 1000000},
		{LevelMM: 0, VolumeLitres: 0},
		{LevelMM: 5000, VolumeLitres: 480000},
	})
	if err != nil {
		t.Fatalf("table error: %v", err)
	}
	return table
}

func TestStrappingTable_Empty(t *testing.T) {
	if _, err := NewStrappingTable(nil); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestStrappingTable_ExactPoints(t *testing.T) {
	table := testTable(t)
	for _, tc := range []struct {
		level, want float64
	}{
		{0, 0},
		{5000, 480000},
		{10000, 1000000},
	} {
		got, err := table.GrossObservedVolume(tc.level)
		if err != nil {
			t.Fatalf("gov error at %v: %v", tc.level, err)
		}
		if got != tc.want {
			t.Fatalf("level %v: expected %v, got %v", tc.level, tc.want, got)
		}
	}
}

func TestStrappingTable_Interpolates(t *testing.T) {
	table := testTable(t)
	got, err := table.GrossObservedVolume(2500)
	if err != nil {
		t.Fatalf("gov error: %v", err)
	}
	if math.Abs(got-240000) > 1e-9 {
		t.Fatalf("expected 240000, got %v", got)
	}
}

func TestStrappingTable_ClampsOutOfRange(t *testing.T) {
	table := testTable(t)
	low, err := table.GrossObservedVolume(-50)
	if err != nil || low != 0 {
		t.Fatalf("expected clamp to 0, got %v err %v", low, err)
	}
	high, err := table.GrossObservedVolume(20000)
	if err != nil || high != 1000000 {
		t.Fatalf("expected clamp to 1000000, got %v err %v", high, err)
	}
}

func TestStrappingTable_Monotonic(t *testing.T) {
	table := testTable(t)
	prev := -1.0
	for level := 0.0; level <= 10000; level += 250 {
		got, err := table.GrossObservedVolume(level)
		if err != nil {
			t.Fatalf("gov error at %v: %v", level, err)
		}
		if got < prev {
			t.Fatalf("volume decreased at level %v: %v < %v", level, got, prev)
		}
		prev = got
	}
}
