package volume

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ReferenceTemperatureC is the standard temperature volumes are corrected to.
const ReferenceTemperatureC = 20.0

// ErrNonPositiveDensity indicates a density that cannot drive the
// thermal-expansion formula.
var ErrNonPositiveDensity = errors.New("volume: density must be positive")

// densityTolerance stops the 20C->15C fixed-point iteration.
var densityTolerance = decimal.NewFromFloat(0.001)

const maxDensityIterations = 5

func init() {
	// The correction chain multiplies through several small coefficients;
	// 28 significant digits keeps the iterative step free of drift.
	if decimal.DivisionPrecision < 28 {
		decimal.DivisionPrecision = 28
	}
}

// AlphaAt15C computes the coefficient of thermal expansion at 15C from
// density at 15C, using the piecewise empirical bands of the petroleum
// measurement tables. Density in the 770-778 kg/m3 transition zone is an
// approximation.
func AlphaAt15C(density15 decimal.Decimal) (decimal.Decimal, error) {
	if density15.Sign() <= 0 {
		return decimal.Zero, ErrNonPositiveDensity
	}
	denSq := density15.Mul(density15)
	var k0, k1 decimal.Decimal
	switch {
	case density15.LessThanOrEqual(decimal.NewFromFloat(770.0)):
		k0 = decimal.NewFromFloat(346.42278)
		k1 = decimal.NewFromFloat(0.43884)
	case density15.LessThan(decimal.NewFromFloat(778.0)):
		// Transition zone.
		k0 = decimal.NewFromFloat(594.5418)
	case density15.LessThan(decimal.NewFromFloat(839.0)):
		k0 = decimal.NewFromFloat(594.5418)
	default:
		k0 = decimal.NewFromFloat(186.9696)
		k1 = decimal.NewFromFloat(0.48618)
	}
	return k0.Add(k1.Mul(density15)).Div(denSq), nil
}

// DensityAt15C iteratively converts a density at 20C to the equivalent
// density at 15C. The alpha formula needs density at 15C, so the value is
// solved as a fixed point: density15 = density20 / (1 - alpha(density15)*5).
func DensityAt15C(density20 decimal.Decimal) (decimal.Decimal, error) {
	if density20.Sign() <= 0 {
		return decimal.Zero, ErrNonPositiveDensity
	}
	guess := density20.Mul(decimal.NewFromFloat(1.005))
	five := decimal.NewFromInt(5)
	for i := 0; i < maxDensityIterations; i++ {
		alpha, err := AlphaAt15C(guess)
		if err != nil {
			return decimal.Zero, err
		}
		next := density20.Div(decimal.NewFromInt(1).Sub(alpha.Mul(five)))
		if next.Sub(guess).Abs().LessThan(densityTolerance) {
			return next, nil
		}
		guess = next
	}
	return guess, nil
}

// CorrectionFactor computes the VCF (CTL) bringing an observed volume to the
// reference temperature: VCF = exp(-alpha*dT*(1 + 0.8*alpha*dT)), with alpha
// evaluated at density at 15C.
func CorrectionFactor(observedTempC decimal.Decimal, density15 decimal.Decimal) (decimal.Decimal, error) {
	alpha, err := AlphaAt15C(density15)
	if err != nil {
		return decimal.Zero, err
	}
	deltaT := observedTempC.Sub(decimal.NewFromFloat(ReferenceTemperatureC))

	// The exponential has no exact decimal form; evaluate it in floats and
	// round back, matching the measurement-table convention of 5 places.
	a := alpha.InexactFloat64()
	dt := deltaT.InexactFloat64()
	vcf := math.Exp(-a * dt * (1 + 0.8*a*dt))
	return decimal.NewFromFloat(vcf).Round(5), nil
}

// StandardVolume converts a gross observed volume to the gross standard
// volume at the reference temperature, rounded to 2 decimal places.
// The supplied density is at 20C and is converted internally to 15C for the
// correction formula.
func StandardVolume(govLitres, observedTempC, density20 decimal.Decimal) (decimal.Decimal, error) {
	density15, err := DensityAt15C(density20)
	if err != nil {
		return decimal.Zero, err
	}
	vcf, err := CorrectionFactor(observedTempC, density15)
	if err != nil {
		return decimal.Zero, err
	}
	return govLitres.Mul(vcf).Round(2), nil
}
