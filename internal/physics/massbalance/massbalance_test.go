package massbalance

import (
	"math"
	"testing"
	"time"
)

func TestDensityAtTemperature(t *testing.T) {
	calc := NewCalculator()
	at20 := calc.DensityAtTemperature(850, 20, "AGO")
	if at20 != 850 {
		t.Fatalf("expected 850 at reference, got %v", at20)
	}
	at30 := calc.DensityAtTemperature(850, 30, "AGO")
	// beta 0.00083: 850 * (1 - 0.0083) = 842.945
	if math.Abs(at30-842.945) > 1e-9 {
		t.Fatalf("expected 842.945, got %v", at30)
	}
	at10 := calc.DensityAtTemperature(850, 10, "AGO")
	if at10 <= 850 {
		t.Fatalf("cooling should raise density, got %v", at10)
	}
}

func TestDensityAtTemperature_UnknownProductUsesDefault(t *testing.T) {
	calc := NewCalculator()
	unknown := calc.DensityAtTemperature(820, 30, "JET-A1")
	fallback := calc.DensityAtTemperature(820, 30, DefaultProductCode)
	if unknown != fallback {
		t.Fatalf("expected default fallback, got %v vs %v", unknown, fallback)
	}
}

func TestMassInTank(t *testing.T) {
	calc := NewCalculator()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	result := calc.MassInTank(500000, 20, 850, "AGO", at)
	if math.Abs(result.MassKg-425000) > 1e-6 {
		t.Fatalf("expected 425000 kg, got %v", result.MassKg)
	}
	if result.DensityAtTempKgM3 != 850 {
		t.Fatalf("expected density 850, got %v", result.DensityAtTempKgM3)
	}
	if !result.Timestamp.Equal(at) {
		t.Fatalf("timestamp not carried through")
	}

	hot := calc.MassInTank(500000, 35, 850, "AGO", at)
	if hot.MassKg >= result.MassKg {
		t.Fatalf("hotter product should weigh less per litre: %v vs %v", hot.MassKg, result.MassKg)
	}
}

func TestMassChangeBetween(t *testing.T) {
	calc := NewCalculator()
	at := time.Now().UTC()
	before := calc.MassInTank(600000, 20, 850, "AGO", at)
	after := calc.MassInTank(400000, 20, 850, "AGO", at.Add(2*time.Hour))
	change := calc.MassChangeBetween(before, after, 2)
	if math.Abs(change.DeltaMassKg+170000) > 1e-6 {
		t.Fatalf("expected -170000 kg delta, got %v", change.DeltaMassKg)
	}
	if math.Abs(change.RateKgPerHour+85000) > 1e-6 {
		t.Fatalf("expected -85000 kg/h, got %v", change.RateKgPerHour)
	}
}

func TestReconcileTransfer_Balanced(t *testing.T) {
	calc := NewCalculator()
	at := time.Now().UTC()
	srcBefore := calc.MassInTank(600000, 20, 850, "AGO", at)
	srcAfter := calc.MassInTank(400000, 20, 850, "AGO", at)
	dstBefore := calc.MassInTank(100000, 20, 850, "AGO", at)
	dstAfter := calc.MassInTank(299800, 20, 850, "AGO", at)

	result := calc.ReconcileTransfer(srcBefore, srcAfter, dstBefore, dstAfter, 200000, 850)
	if result.Status != StatusBalanced {
		t.Fatalf("expected BALANCED, got %s (%.3f%%)", result.Status, result.DiscrepancyPercent)
	}
	if math.Abs(result.MeteredMassKg-170000) > 1e-6 {
		t.Fatalf("expected metered 170000 kg, got %v", result.MeteredMassKg)
	}
}

func TestReconcileTransfer_Loss(t *testing.T) {
	calc := NewCalculator()
	at := time.Now().UTC()
	srcBefore := calc.MassInTank(600000, 20, 850, "AGO", at)
	srcAfter := calc.MassInTank(400000, 20, 850, "AGO", at)
	dstBefore := calc.MassInTank(100000, 20, 850, "AGO", at)
	dstAfter := calc.MassInTank(290000, 20, 850, "AGO", at)

	result := calc.ReconcileTransfer(srcBefore, srcAfter, dstBefore, dstAfter, 0, 0)
	if result.Status != StatusLoss {
		t.Fatalf("expected LOSS, got %s", result.Status)
	}
	if result.DiscrepancyKg >= 0 {
		t.Fatalf("expected negative discrepancy, got %v", result.DiscrepancyKg)
	}
}

func TestReconcileTransfer_Gain(t *testing.T) {
	calc := NewCalculator()
	at := time.Now().UTC()
	srcBefore := calc.MassInTank(600000, 20, 850, "AGO", at)
	srcAfter := calc.MassInTank(450000, 20, 850, "AGO", at)
	dstBefore := calc.MassInTank(100000, 20, 850, "AGO", at)
	dstAfter := calc.MassInTank(300000, 20, 850, "AGO", at)

	result := calc.ReconcileTransfer(srcBefore, srcAfter, dstBefore, dstAfter, 0, 0)
	if result.Status != StatusGain {
		t.Fatalf("expected GAIN, got %s", result.Status)
	}
}
