package assets

import "time"

// Kind identifies the asset class; per-kind metric dispatch switches on it.
type Kind string

const (
	KindStorageTank Kind = "StorageTank"
	KindPump        Kind = "Pump"
	KindMeter       Kind = "Meter"
	KindPipeline    Kind = "Pipeline"
	KindLoadingArm  Kind = "LoadingArm"
	KindGantryRack  Kind = "GantryRack"
	KindPumpHouse   Kind = "PumpHouse"
)

// Valid reports whether the kind is one of the depot asset classes.
func (k Kind) Valid() bool {
	switch k {
	case KindStorageTank, KindPump, KindMeter, KindPipeline, KindLoadingArm, KindGantryRack, KindPumpHouse:
		return true
	default:
		return false
	}
}

// Raw metric names published by sensors.
const (
	MetricLevelMM     = "level_mm"
	MetricLevel       = "level"
	MetricTemperature = "temperature"
	MetricPumpStatus  = "pump_status"
	MetricFlowRate    = "flow_rate"
)

// Derived metric names written by the calculation engine.
const (
	MetricLevelPercentage = "level_percentage"
	MetricVolumeGOV       = "volume_gov"
	MetricVolumeGSV       = "volume_gsv"
	MetricMassKg          = "mass_kg"
	MetricDensityAtTemp   = "density_at_temp"
	MetricHeatContentKJ   = "heat_content_kj"
	MetricPowerKW         = "power_kw"
	MetricEnergyKWh       = "energy_kwh"
	MetricOperatingCost   = "operating_cost"
)

// IsDerivedMetric reports whether a metric name is produced by the
// calculation engine rather than a sensor.
func IsDerivedMetric(name string) bool {
	switch name {
	case MetricLevelPercentage, MetricVolumeGOV, MetricVolumeGSV,
		MetricMassKg, MetricDensityAtTemp, MetricHeatContentKJ,
		MetricPowerKW, MetricEnergyKWh, MetricOperatingCost:
		return true
	default:
		return false
	}
}

// Asset is the static identity and configuration of one depot asset.
// Immutable during a calculation cycle; reloaded from storage per cycle.
type Asset struct {
	ID                  string
	Kind                Kind
	DepotID             string
	Description         string
	ProductCode         string
	CapacityLitres      float64
	DensityAt20CKgM3    float64
	MotorPowerKW        float64
	MotorEfficiency     float64
	HighLevelThresholdM float64
	LowLevelThresholdM  float64
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ChainMetric reports whether a raw metric participates in the
// volume/density derived chain for this asset kind.
func (a Asset) ChainMetric(metric string) bool {
	switch a.Kind {
	case KindStorageTank:
		return metric == MetricLevelMM || metric == MetricLevel || metric == MetricTemperature
	case KindPump:
		return metric == MetricPumpStatus
	default:
		return false
	}
}
