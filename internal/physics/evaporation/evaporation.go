package evaporation

import (
	"math"
	"strconv"
	"strings"
)

// Atmospheric constants for the vapor-pressure model.
const (
	AtmosphericPressureKPa = 101.325
	gasConstant            = 8.314
	metersToFeet           = 3.281
	ft3ToM3                = 0.0283
)

// Loss types reported by the estimator.
const (
	LossStanding = "standing"
	LossWorking  = "working"
)

// VaporProperties holds per-product volatility data. RVP is the Reid vapor
// pressure at 37.8C.
type VaporProperties struct {
	RVPKPa          float64 `yaml:"rvp_kpa"`
	MolecularWeight float64 `yaml:"molecular_weight"`
	LiquidDensity   float64 `yaml:"liquid_density_kg_m3"`
}

var vaporDefaults = map[string]VaporProperties{
	"PMS":     {RVPKPa: 62.0, MolecularWeight: 92.0, LiquidDensity: 740},
	"AGO":     {RVPKPa: 0.5, MolecularWeight: 200.0, LiquidDensity: 850},
	"DPK":     {RVPKPa: 1.5, MolecularWeight: 170.0, LiquidDensity: 800},
	"LPG":     {RVPKPa: 1200.0, MolecularWeight: 50.0, LiquidDensity: 540},
	"RFO":     {RVPKPa: 0.01, MolecularWeight: 400.0, LiquidDensity: 980},
	"DEFAULT": {RVPKPa: 10.0, MolecularWeight: 150.0, LiquidDensity: 820},
}

// paintAbsorptance maps tank paint color to solar absorptance.
var paintAbsorptance = map[string]float64{
	"white":       0.17,
	"aluminum":    0.39,
	"light_gray":  0.54,
	"medium_gray": 0.68,
	"dark_gray":   0.89,
	"black":       0.97,
}

const defaultAbsorptance = 0.54

// Loss is an estimated evaporative loss over a period.
type Loss struct {
	LossKg            float64
	LossLitres        float64
	LossType          string
	PeriodDescription string
	ProductCode       string
	AverageTempC      float64
	RatePerDayKg      float64
	TrueVaporPressure float64
}

// StandingInput describes a fixed-roof tank and climate for breathing-loss
// estimation.
type StandingInput struct {
	TankDiameterM  float64
	TankHeightM    float64
	ProductCode    string
	AverageTempC   float64
	TempRangeC     float64
	Days           int
	PaintColor     string
	SolarFactor    float64
	LiquidHeightM  float64
	CapacityLitres float64
}

// Estimator computes standing and working evaporative losses for
// fixed-roof tanks.
type Estimator struct {
	vapor map[string]VaporProperties
}

// NewEstimator constructs an estimator; a non-empty override table replaces
// the built-in vapor data.
func NewEstimator(override map[string]VaporProperties) *Estimator {
	est := &Estimator{vapor: vaporDefaults}
	if len(override) > 0 {
		est.vapor = override
		if _, ok := est.vapor["DEFAULT"]; !ok {
			est.vapor["DEFAULT"] = vaporDefaults["DEFAULT"]
		}
	}
	return est
}

// VaporProperties returns volatility data for a product code.
func (e *Estimator) VaporProperties(productCode string) VaporProperties {
	if props, ok := e.vapor[strings.ToUpper(productCode)]; ok {
		return props
	}
	return e.vapor["DEFAULT"]
}

// TrueVaporPressure estimates TVP at a temperature from the Reid vapor
// pressure: TVP = RVP * exp(0.02 * (T - 37.8)).
func (e *Estimator) TrueVaporPressure(temperatureC float64, productCode string) float64 {
	rvp := e.VaporProperties(productCode).RVPKPa
	return rvp * math.Exp(0.02*(temperatureC-37.8))
}

// StandingLosses estimates breathing losses driven by vapor-space volume,
// daily temperature swing and solar absorptance.
func (e *Estimator) StandingLosses(in StandingInput) Loss {
	props := e.VaporProperties(in.ProductCode)
	days := in.Days
	if days <= 0 {
		days = 1
	}
	solarFactor := in.SolarFactor
	if solarFactor <= 0 {
		solarFactor = 1.0
	}

	tankHeight := in.TankHeightM
	if tankHeight <= 0 {
		if in.CapacityLitres > 0 && in.TankDiameterM > 0 {
			radius := in.TankDiameterM / 2
			tankHeight = (in.CapacityLitres / 1000) / (math.Pi * radius * radius)
		} else {
			tankHeight = in.TankDiameterM * 0.75
		}
	}
	liquidHeight := in.LiquidHeightM
	if liquidHeight <= 0 {
		liquidHeight = tankHeight * 0.5
	}
	vaporHeight := math.Max(tankHeight-liquidHeight, 0.1)

	diameterFt := in.TankDiameterM * metersToFeet
	vaporHeightFt := vaporHeight * metersToFeet
	vaporVolumeFt3 := math.Pi * (diameterFt / 2) * (diameterFt / 2) * vaporHeightFt

	tvp := e.TrueVaporPressure(in.AverageTempC, in.ProductCode)

	// Vapor pressure function, capped near saturation.
	pRatio := tvp / AtmosphericPressureKPa
	kp := 1.0
	if pRatio < 0.95 {
		kp = pRatio / math.Sqrt(1-pRatio)
	}

	// Temperature range factor: larger daily swings breathe harder.
	ke := 0.06 + 0.02*in.TempRangeC

	absorptance := defaultAbsorptance
	if a, ok := paintAbsorptance[strings.ToLower(in.PaintColor)]; ok {
		absorptance = a
	}
	ks := absorptance * solarFactor

	vaporDensity := props.MolecularWeight * tvp / (gasConstant * (in.AverageTempC + 273.15))
	lossPerDayKg := vaporVolumeFt3 * ft3ToM3 * vaporDensity * ke * ks * kp
	totalKg := lossPerDayKg * float64(days)

	return Loss{
		LossKg:            totalKg,
		LossLitres:        totalKg / props.LiquidDensity * 1000,
		LossType:          LossStanding,
		PeriodDescription: periodDays(days),
		ProductCode:       in.ProductCode,
		AverageTempC:      in.AverageTempC,
		RatePerDayKg:      lossPerDayKg,
		TrueVaporPressure: tvp,
	}
}

// WorkingLosses estimates vapor displaced during tank filling, proportional
// to throughput, vapor-pressure ratio and a turnover saturation factor.
func (e *Estimator) WorkingLosses(throughputLitres float64, productCode string, averageTempC, turnoverFactor float64) Loss {
	props := e.VaporProperties(productCode)
	tvp := e.TrueVaporPressure(averageTempC, productCode)

	vaporPressureRatio := tvp / AtmosphericPressureKPa
	workingLossFactor := vaporPressureRatio * 0.01
	saturationFactor := 0.5 + 0.5*math.Min(turnoverFactor, 1.0)

	lossLitres := throughputLitres * workingLossFactor * saturationFactor
	lossKg := lossLitres / 1000 * props.LiquidDensity

	return Loss{
		LossKg:            lossKg,
		LossLitres:        lossLitres,
		LossType:          LossWorking,
		PeriodDescription: "throughput",
		ProductCode:       productCode,
		AverageTempC:      averageTempC,
		TrueVaporPressure: tvp,
	}
}

func periodDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return strconv.Itoa(days) + " days"
}
