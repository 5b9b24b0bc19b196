package massbalance

import (
	"fmt"
	"time"
)

// AcceptableDiscrepancyPercent is the reconciliation tolerance for a
// transfer to count as balanced.
const AcceptableDiscrepancyPercent = 0.5

// Reconciliation statuses.
const (
	StatusBalanced = "BALANCED"
	StatusGain     = "GAIN"
	StatusLoss     = "LOSS"
)

// MassResult is the outcome of a mass calculation for a tank.
type MassResult struct {
	MassKg            float64
	VolumeLitres      float64
	DensityAtTempKgM3 float64
	TemperatureC      float64
	DensityAt20CKgM3  float64
	ProductCode       string
	Timestamp         time.Time
}

// MassChange describes the difference between two mass measurements.
type MassChange struct {
	InitialMassKg     float64
	FinalMassKg       float64
	DeltaMassKg       float64
	DeltaVolumeLitres float64
	DurationHours     float64
	RateKgPerHour     float64
}

// ReconciliationResult is the audit outcome of a tank-to-tank transfer.
type ReconciliationResult struct {
	SourceMassChangeKg      float64
	DestinationMassChangeKg float64
	MeteredMassKg           float64
	DiscrepancyKg           float64
	DiscrepancyPercent      float64
	Status                  string
	Details                 string
}

// Calculator converts volumes to masses with temperature-corrected density
// and reconciles transfers between tanks.
type Calculator struct {
	referenceTempC float64
	properties     map[string]Properties
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithReferenceTemperature overrides the 20C density reference.
func WithReferenceTemperature(tempC float64) Option {
	return func(c *Calculator) { c.referenceTempC = tempC }
}

// WithProperties replaces the product property table.
func WithProperties(table map[string]Properties) Option {
	return func(c *Calculator) {
		if len(table) > 0 {
			c.properties = table
		}
	}
}

// NewCalculator constructs a mass balance calculator.
func NewCalculator(opts ...Option) *Calculator {
	calc := &Calculator{
		referenceTempC: 20.0,
		properties:     DefaultProperties(),
	}
	for _, opt := range opts {
		opt(calc)
	}
	if _, ok := calc.properties[DefaultProductCode]; !ok {
		calc.properties[DefaultProductCode] = DefaultProperties()[DefaultProductCode]
	}
	return calc
}

// Properties returns the property entry for a product, falling back to the
// generic product when the code is unknown.
func (c *Calculator) Properties(productCode string) Properties {
	return lookupProperties(c.properties, productCode)
}

// DensityAtTemperature applies the linear thermal-expansion model:
// rho(T) = rho20 * (1 - beta*(T - 20)).
func (c *Calculator) DensityAtTemperature(density20, temperatureC float64, productCode string) float64 {
	beta := c.Properties(productCode).ThermalExpansionCoeff
	return density20 * (1 - beta*(temperatureC-c.referenceTempC))
}

// MassFromVolume converts litres to kilograms at the given density.
func MassFromVolume(volumeLitres, densityKgM3 float64) float64 {
	return volumeLitres * densityKgM3 / 1000.0
}

// VolumeFromMass converts kilograms to litres at the given density.
func VolumeFromMass(massKg, densityKgM3 float64) float64 {
	return massKg * 1000.0 / densityKgM3
}

// MassInTank computes the product mass at observed conditions from the gross
// observed volume, correcting density for temperature.
func (c *Calculator) MassInTank(govLitres, temperatureC, density20 float64, productCode string, at time.Time) MassResult {
	densityAtTemp := c.DensityAtTemperature(density20, temperatureC, productCode)
	return MassResult{
		MassKg:            MassFromVolume(govLitres, densityAtTemp),
		VolumeLitres:      govLitres,
		DensityAtTempKgM3: densityAtTemp,
		TemperatureC:      temperatureC,
		DensityAt20CKgM3:  density20,
		ProductCode:       productCode,
		Timestamp:         at,
	}
}

// MassAtStandardConditions computes mass from a GSV, which is already at the
// reference temperature, so density at 20C applies directly.
func (c *Calculator) MassAtStandardConditions(gsvLitres, density20 float64) float64 {
	return MassFromVolume(gsvLitres, density20)
}

// MassChangeBetween computes the delta between two measurements, with a
// kg/hour rate when a duration is known.
func (c *Calculator) MassChangeBetween(before, after MassResult, durationHours float64) MassChange {
	change := MassChange{
		InitialMassKg:     before.MassKg,
		FinalMassKg:       after.MassKg,
		DeltaMassKg:       after.MassKg - before.MassKg,
		DeltaVolumeLitres: after.VolumeLitres - before.VolumeLitres,
		DurationHours:     durationHours,
	}
	if durationHours > 0 {
		change.RateKgPerHour = change.DeltaMassKg / durationHours
	}
	return change
}

// ReconcileTransfer audits a tank-to-tank transfer against mass
// conservation. A discrepancy within the tolerance is BALANCED; otherwise
// the sign classifies it as GAIN (destination gained more than the source
// lost) or LOSS.
func (c *Calculator) ReconcileTransfer(sourceBefore, sourceAfter, destBefore, destAfter MassResult, meteredVolumeLitres, meteredDensityKgM3 float64) ReconciliationResult {
	sourceChange := sourceBefore.MassKg - sourceAfter.MassKg // positive = loss
	destChange := destAfter.MassKg - destBefore.MassKg       // positive = gain

	var meteredMass float64
	switch {
	case meteredVolumeLitres > 0 && meteredDensityKgM3 > 0:
		meteredMass = MassFromVolume(meteredVolumeLitres, meteredDensityKgM3)
	case meteredVolumeLitres > 0:
		avgDensity := (sourceBefore.DensityAtTempKgM3 + destAfter.DensityAtTempKgM3) / 2
		meteredMass = MassFromVolume(meteredVolumeLitres, avgDensity)
	default:
		// No meter data; the source loss is the reference figure.
		meteredMass = sourceChange
	}

	discrepancy := destChange - sourceChange
	referenceMass := maxFloat(sourceChange, destChange, meteredMass, 1.0)
	discrepancyPercent := absFloat(discrepancy) / referenceMass * 100

	result := ReconciliationResult{
		SourceMassChangeKg:      -sourceChange,
		DestinationMassChangeKg: destChange,
		MeteredMassKg:           meteredMass,
		DiscrepancyKg:           discrepancy,
		DiscrepancyPercent:      discrepancyPercent,
	}
	switch {
	case discrepancyPercent <= AcceptableDiscrepancyPercent:
		result.Status = StatusBalanced
		result.Details = fmt.Sprintf("transfer reconciled within %.1f%% tolerance", AcceptableDiscrepancyPercent)
	case discrepancy > 0:
		result.Status = StatusGain
		result.Details = fmt.Sprintf("destination gained %.2f kg more than source lost", discrepancy)
	default:
		result.Status = StatusLoss
		result.Details = fmt.Sprintf("source lost %.2f kg more than destination gained", absFloat(discrepancy))
	}
	return result
}

func maxFloat(values ...float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
