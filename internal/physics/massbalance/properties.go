package massbalance

import "strings"

// Properties holds the physical constants for one petroleum product.
type Properties struct {
	ThermalExpansionCoeff float64 `yaml:"thermal_expansion_coeff"`
	SpecificHeatKJKgC     float64 `yaml:"specific_heat_kj_kg_c"`
	VaporPressureKPa25C   float64 `yaml:"vapor_pressure_kpa_25c"`
	TypicalDensity20C     float64 `yaml:"typical_density_20c"`
}

// DefaultProductCode is the fallback entry used for unknown products.
const DefaultProductCode = "DEFAULT"

// DefaultProperties are approximate constants for the products handled by
// the depot: PMS (gasoline), AGO (diesel), DPK (kerosene), LPG and RFO
// (residual fuel oil).
func DefaultProperties() map[string]Properties {
	return map[string]Properties{
		"PMS": {
			ThermalExpansionCoeff: 0.00120,
			SpecificHeatKJKgC:     2.22,
			VaporPressureKPa25C:   55.0,
			TypicalDensity20C:     740.0,
		},
		"AGO": {
			ThermalExpansionCoeff: 0.00083,
			SpecificHeatKJKgC:     2.05,
			VaporPressureKPa25C:   0.5,
			TypicalDensity20C:     850.0,
		},
		"DPK": {
			ThermalExpansionCoeff: 0.00090,
			SpecificHeatKJKgC:     2.10,
			VaporPressureKPa25C:   1.5,
			TypicalDensity20C:     800.0,
		},
		"LPG": {
			ThermalExpansionCoeff: 0.00300,
			SpecificHeatKJKgC:     2.50,
			VaporPressureKPa25C:   1200.0,
			TypicalDensity20C:     540.0,
		},
		"RFO": {
			ThermalExpansionCoeff: 0.00065,
			SpecificHeatKJKgC:     1.80,
			VaporPressureKPa25C:   0.01,
			TypicalDensity20C:     980.0,
		},
		DefaultProductCode: {
			ThermalExpansionCoeff: 0.00095,
			SpecificHeatKJKgC:     2.00,
			VaporPressureKPa25C:   10.0,
			TypicalDensity20C:     820.0,
		},
	}
}

func lookupProperties(table map[string]Properties, productCode string) Properties {
	if props, ok := table[strings.ToUpper(productCode)]; ok {
		return props
	}
	return table[DefaultProductCode]
}
