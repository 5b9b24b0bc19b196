package volume

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDensityAt15C_AboveDensityAt20C(t *testing.T) {
	for _, density20 := range []float64{740, 800, 850, 980} {
		d15, err := DensityAt15C(decimal.NewFromFloat(density20))
		if err != nil {
			t.Fatalf("density15 error for %v: %v", density20, err)
		}
		got := d15.InexactFloat64()
		if got <= density20 {
			t.Fatalf("density at 15C should exceed density at 20C: %v vs %v", got, density20)
		}
		// Cooling by five degrees shifts density by well under 1%.
		if got > density20*1.01 {
			t.Fatalf("density at 15C implausibly high: %v from %v", got, density20)
		}
	}
}

// The fixed point solves density20 = density15 * (1 - alpha(density15)*5),
// so applying the forward formula to the converged value must land back on
// the input density.
func TestDensityAt15C_RoundTrip(t *testing.T) {
	one := decimal.NewFromInt(1)
	five := decimal.NewFromInt(5)
	for _, density20 := range []float64{740, 800, 850, 980} {
		d20 := decimal.NewFromFloat(density20)
		d15, err := DensityAt15C(d20)
		if err != nil {
			t.Fatalf("density15 error for %v: %v", density20, err)
		}
		alpha, err := AlphaAt15C(d15)
		if err != nil {
			t.Fatalf("alpha error for %v: %v", density20, err)
		}
		back := d15.Mul(one.Sub(alpha.Mul(five)))
		if back.Sub(d20).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
			t.Fatalf("round trip for %v drifted to %s", density20, back)
		}
	}
}

func TestDensityAt15C_RejectsNonPositive(t *testing.T) {
	if _, err := DensityAt15C(decimal.Zero); !errors.Is(err, ErrNonPositiveDensity) {
		t.Fatalf("expected ErrNonPositiveDensity, got %v", err)
	}
}

func TestCorrectionFactor_UnityAtReferenceTemp(t *testing.T) {
	density15, err := DensityAt15C(decimal.NewFromFloat(850))
	if err != nil {
		t.Fatalf("density15 error: %v", err)
	}
	vcf, err := CorrectionFactor(decimal.NewFromFloat(ReferenceTemperatureC), density15)
	if err != nil {
		t.Fatalf("vcf error: %v", err)
	}
	if !vcf.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected VCF 1 at reference temperature, got %s", vcf)
	}
}

func TestCorrectionFactor_DirectionOfCorrection(t *testing.T) {
	density15, err := DensityAt15C(decimal.NewFromFloat(740))
	if err != nil {
		t.Fatalf("density15 error: %v", err)
	}
	hot, err := CorrectionFactor(decimal.NewFromFloat(35), density15)
	if err != nil {
		t.Fatalf("vcf error: %v", err)
	}
	cold, err := CorrectionFactor(decimal.NewFromFloat(10), density15)
	if err != nil {
		t.Fatalf("vcf error: %v", err)
	}
	if hot.InexactFloat64() >= 1 {
		t.Fatalf("hot product should shrink, VCF %s", hot)
	}
	if cold.InexactFloat64() <= 1 {
		t.Fatalf("cold product should expand, VCF %s", cold)
	}
}

func TestStandardVolume_AtReferenceTemp(t *testing.T) {
	gsv, err := StandardVolume(
		decimal.NewFromFloat(500000),
		decimal.NewFromFloat(ReferenceTemperatureC),
		decimal.NewFromFloat(850),
	)
	if err != nil {
		t.Fatalf("gsv error: %v", err)
	}
	got, _ := gsv.Float64()
	if got != 500000 {
		t.Fatalf("expected 500000 at reference temperature, got %v", got)
	}
}

func TestStandardVolume_HotGasoline(t *testing.T) {
	gsv, err := StandardVolume(
		decimal.NewFromFloat(500000),
		decimal.NewFromFloat(30),
		decimal.NewFromFloat(740),
	)
	if err != nil {
		t.Fatalf("gsv error: %v", err)
	}
	got, _ := gsv.Float64()
	if got >= 500000 {
		t.Fatalf("hot gasoline should correct downwards, got %v", got)
	}
	// Ten degrees above reference shifts gasoline volume by roughly 1.2%.
	if math.Abs(got-500000*0.988)/500000 > 0.005 {
		t.Fatalf("correction magnitude out of range, got %v", got)
	}
}
