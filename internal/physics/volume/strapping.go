package volume

import (
	"errors"
	"sort"
)

// ErrEmptyTable indicates a strapping table with no calibration points.
var ErrEmptyTable = errors.New("volume: empty strapping table")

// StrappingPoint is a single calibration entry for a tank.
type StrappingPoint struct {
	LevelMM      float64
	VolumeLitres float64
}

// StrappingTable maps measured level to contained volume for one tank.
// Points are kept sorted by level; both columns are non-decreasing.
type StrappingTable struct {
	points []StrappingPoint
}

// NewStrappingTable builds a table from calibration points, sorting by level.
func NewStrappingTable(points []StrappingPoint) (*StrappingTable, error) {
	if len(points) == 0 {
		return nil, ErrEmptyTable
	}
	sorted := make([]StrappingPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LevelMM < sorted[j].LevelMM })
	return &StrappingTable{points: sorted}, nil
}

// Len returns the number of calibration points.
func (t *StrappingTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// GrossObservedVolume interpolates the volume at the given level.
// Levels outside the calibrated range clamp to the table's min or max
// volume; the table is never extrapolated.
func (t *StrappingTable) GrossObservedVolume(levelMM float64) (float64, error) {
	if t == nil || len(t.points) == 0 {
		return 0, ErrEmptyTable
	}
	pts := t.points
	if levelMM <= pts[0].LevelMM {
		return pts[0].VolumeLitres, nil
	}
	last := pts[len(pts)-1]
	if levelMM >= last.LevelMM {
		return last.VolumeLitres, nil
	}
	idx := sort.Search(len(pts), func(i int) bool { return pts[i].LevelMM >= levelMM })
	lo, hi := pts[idx-1], pts[idx]
	if hi.LevelMM == lo.LevelMM {
		return lo.VolumeLitres, nil
	}
	frac := (levelMM - lo.LevelMM) / (hi.LevelMM - lo.LevelMM)
	return lo.VolumeLitres + frac*(hi.VolumeLitres-lo.VolumeLitres), nil
}
