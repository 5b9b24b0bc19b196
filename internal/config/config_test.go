package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEPOT_CONFIG", path)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("DEPOT_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reporting.Currency != "GHS" {
		t.Fatalf("expected GHS default, got %q", cfg.Reporting.Currency)
	}
	if cfg.Reporting.OutputDir != "var/reports" {
		t.Fatalf("expected default output dir, got %q", cfg.Reporting.OutputDir)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	writeConfigFile(t, `
products:
  PMS:
    thermal_expansion_coeff: 0.0012
    specific_heat_kj_kg_c: 2.22
    typical_density_20c: 745
vapor:
  PMS:
    rvp_kpa: 58
    molecular_weight: 92
    liquid_density_kg_m3: 745
climate:
  monthly_avg_temps_c: [27, 28, 29, 29, 28, 26, 25, 25, 26, 27, 28, 27]
reporting:
  price_per_litre: 12.5
  output_dir: /tmp/reports
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reporting.PricePerLitre != 12.5 {
		t.Fatalf("expected 12.5, got %v", cfg.Reporting.PricePerLitre)
	}
	if cfg.Reporting.Currency != "GHS" {
		t.Fatalf("currency should default when omitted, got %q", cfg.Reporting.Currency)
	}
	if len(cfg.Climate.MonthlyAvgTempsC) != 12 {
		t.Fatalf("expected 12 monthly temperatures, got %d", len(cfg.Climate.MonthlyAvgTempsC))
	}
	if cfg.Vapor["PMS"].RVPKPa != 58 {
		t.Fatalf("expected vapor override, got %v", cfg.Vapor["PMS"].RVPKPa)
	}

	table := cfg.ProductTable()
	if table["PMS"].SpecificHeatKJKgC != 2.22 {
		t.Fatalf("override must win, got %v", table["PMS"].SpecificHeatKJKgC)
	}
	if _, ok := table["AGO"]; !ok {
		t.Fatalf("built-in products must survive the merge")
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	t.Setenv("DEPOT_CONFIG", "/nonexistent/depot.yaml")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
