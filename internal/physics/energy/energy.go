package energy

import (
	"math"
	"strings"
)

// Physical constants.
const (
	GravityMS2 = 9.81
	kJPerKWh   = 3600.0
)

// Convection coefficients in W/m2K for the tank heat-transfer model.
const (
	CoeffWallStillAir = 5.0
	CoeffWallWind     = 15.0
	CoeffRoofStillAir = 8.0
	CoeffRoofWind     = 20.0
	CoeffInsulated    = 0.5
	CoeffGround       = 2.0
)

// specificHeatDefaults holds kJ/kg*C values per product code.
var specificHeatDefaults = map[string]float64{
	"PMS":     2.22,
	"AGO":     2.05,
	"DPK":     2.10,
	"LPG":     2.50,
	"RFO":     1.80,
	"DEFAULT": 2.00,
}

// HeatContent is the thermal energy stored in a tank's product.
type HeatContent struct {
	EnergyKJ          float64
	EnergyKWh         float64
	MassKg            float64
	TemperatureC      float64
	SpecificHeatKJKgC float64
	ReferenceTempC    float64
}

// HeatTransferRate is the steady convection rate between tank and ambient.
type HeatTransferRate struct {
	HeatRateKW              float64
	HeatRateKJPerHour       float64
	TemperatureDifferenceC  float64
	HeatTransferCoeffWM2K   float64
	SurfaceAreaM2           float64
}

// TemperaturePrediction is a Newton's-law cooling/heating forecast.
type TemperaturePrediction struct {
	InitialTempC      float64
	PredictedTempC    float64
	DeltaTempC        float64
	AmbientTempC      float64
	DurationHours     float64
	HeatTransferredKJ float64
}

// PumpEnergy is the electrical consumption of a pump over a duration.
type PumpEnergy struct {
	EnergyKWh     float64
	PowerKW       float64
	DurationHours float64
	FlowRateM3Hr  float64
	HeadM         float64
	Efficiency    float64
}

// ElectricityCost is a daily cost estimate for pump operations.
type ElectricityCost struct {
	EnergyKWh      float64
	EnergyCost     float64
	DemandCost     float64
	TotalDailyCost float64
}

// Calculator provides stateless thermal-energy computations for tanks and
// pumps. The reference temperature anchors heat-content figures (0C keeps
// them absolute).
type Calculator struct {
	referenceTempC float64
}

// NewCalculator constructs an energy calculator with the given heat-content
// reference temperature.
func NewCalculator(referenceTempC float64) *Calculator {
	return &Calculator{referenceTempC: referenceTempC}
}

// SpecificHeat returns the kJ/kg*C value for a product code.
func SpecificHeat(productCode string) float64 {
	if cp, ok := specificHeatDefaults[strings.ToUpper(productCode)]; ok {
		return cp
	}
	return specificHeatDefaults["DEFAULT"]
}

// TankHeatContent computes Q = m * Cp * (T - Tref).
func (c *Calculator) TankHeatContent(massKg, temperatureC float64, productCode string) HeatContent {
	cp := SpecificHeat(productCode)
	energyKJ := massKg * cp * (temperatureC - c.referenceTempC)
	return HeatContent{
		EnergyKJ:          energyKJ,
		EnergyKWh:         energyKJ / kJPerKWh,
		MassKg:            massKg,
		TemperatureC:      temperatureC,
		SpecificHeatKJKgC: cp,
		ReferenceTempC:    c.referenceTempC,
	}
}

// EstimateSurfaceArea returns the full cylinder surface area from explicit
// dimensions, or estimates dimensions from capacity assuming height = 3r.
// Returns 0 when neither is available.
func EstimateSurfaceArea(diameterM, heightM, capacityLitres float64) float64 {
	if diameterM > 0 && heightM > 0 {
		radius := diameterM / 2
		return 2*math.Pi*radius*heightM + 2*math.Pi*radius*radius
	}
	if capacityLitres > 0 {
		// V = pi * r^2 * h with h = 3r, so r = (V / 3pi)^(1/3).
		volumeM3 := capacityLitres / 1000
		radius := math.Cbrt(volumeM3 / (3 * math.Pi))
		height := 3 * radius
		return 2*math.Pi*radius*height + 2*math.Pi*radius*radius
	}
	return 0
}

// TransferRate computes the steady convection rate Q = U * A * dT. Positive
// values mean the tank is losing heat to the environment.
func (c *Calculator) TransferRate(tankTempC, ambientTempC, surfaceAreaM2, coeffWM2K float64) HeatTransferRate {
	if coeffWM2K <= 0 {
		coeffWM2K = CoeffWallStillAir
	}
	deltaT := tankTempC - ambientTempC
	rateKW := coeffWM2K * surfaceAreaM2 * deltaT / 1000
	return HeatTransferRate{
		HeatRateKW:             rateKW,
		HeatRateKJPerHour:      rateKW * kJPerKWh,
		TemperatureDifferenceC: deltaT,
		HeatTransferCoeffWM2K:  coeffWM2K,
		SurfaceAreaM2:          surfaceAreaM2,
	}
}

// PredictTemperature forecasts product temperature after a duration using
// Newton's law with time constant tau = m*Cp/(U*A). A zero UA product means
// no change.
func (c *Calculator) PredictTemperature(massKg, initialTempC, ambientTempC, durationHours, surfaceAreaM2, coeffWM2K float64, productCode string) TemperaturePrediction {
	cp := SpecificHeat(productCode)
	if coeffWM2K <= 0 {
		coeffWM2K = CoeffWallStillAir
	}
	thermalMassJPerK := massKg * cp * 1000
	heatTransferUA := coeffWM2K * surfaceAreaM2
	if heatTransferUA <= 0 {
		return TemperaturePrediction{
			InitialTempC:   initialTempC,
			PredictedTempC: initialTempC,
			AmbientTempC:   ambientTempC,
			DurationHours:  durationHours,
		}
	}
	timeConstantS := thermalMassJPerK / heatTransferUA
	decay := math.Exp(-durationHours * 3600 / timeConstantS)
	predicted := ambientTempC + (initialTempC-ambientTempC)*decay
	delta := predicted - initialTempC
	return TemperaturePrediction{
		InitialTempC:      initialTempC,
		PredictedTempC:    predicted,
		DeltaTempC:        delta,
		AmbientTempC:      ambientTempC,
		DurationHours:     durationHours,
		HeatTransferredKJ: massKg * cp * math.Abs(delta),
	}
}

// PumpConsumption computes electrical energy for a pump run:
// P = rho*g*Q*H / efficiency, integrated over the duration.
func (c *Calculator) PumpConsumption(flowRateLPM, headM, durationHours, efficiency, densityKgM3 float64) PumpEnergy {
	if efficiency <= 0 {
		efficiency = 0.75
	}
	if densityKgM3 <= 0 {
		densityKgM3 = 850.0
	}
	flowRateM3S := flowRateLPM / (1000 * 60)
	hydraulicW := densityKgM3 * GravityMS2 * flowRateM3S * headM
	electricalKW := hydraulicW / efficiency / 1000
	return PumpEnergy{
		EnergyKWh:     electricalKW * durationHours,
		PowerKW:       electricalKW,
		DurationHours: durationHours,
		FlowRateM3Hr:  flowRateLPM * 60 / 1000,
		HeadM:         headM,
		Efficiency:    efficiency,
	}
}

// DailyCost estimates the daily electricity cost for pump operations, with
// a monthly demand charge allocated per day.
func DailyCost(energyKWh, ratePerKWh, demandChargePerKW, peakPowerKW float64) ElectricityCost {
	energyCost := energyKWh * ratePerKWh
	demandCost := demandChargePerKW * peakPowerKW / 30
	return ElectricityCost{
		EnergyKWh:      energyKWh,
		EnergyCost:     energyCost,
		DemandCost:     demandCost,
		TotalDailyCost: energyCost + demandCost,
	}
}
