package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	assets "depot-twin/internal/assets/domain"
	"depot-twin/internal/observability/metrics"
	"depot-twin/internal/physics/evaporation"
)

// AssetSource loads the tanks to report on.
type AssetSource interface {
	ListByKind(ctx context.Context, kind assets.Kind) ([]assets.Asset, error)
}

// Generator produces annual evaporative-loss workbooks and PDFs for
// every storage tank on a daily schedule.
type Generator struct {
	assets    AssetSource
	estimator *evaporation.Estimator
	logger    *log.Logger

	outputDir     string
	pricePerLitre float64
	currency      string
	avgTemps      []float64
	tempRanges    []float64
	interval      time.Duration
}

// GeneratorOption customizes the generator.
type GeneratorOption func(*Generator)

// WithClimate sets per-month average temperatures and daily ranges.
func WithClimate(avgTemps, tempRanges []float64) GeneratorOption {
	return func(g *Generator) {
		g.avgTemps = avgTemps
		g.tempRanges = tempRanges
	}
}

// WithValuation sets price and currency for the economic loss figure.
func WithValuation(pricePerLitre float64, currency string) GeneratorOption {
	return func(g *Generator) {
		g.pricePerLitre = pricePerLitre
		if currency != "" {
			g.currency = currency
		}
	}
}

// WithReportInterval overrides the generation interval.
func WithReportInterval(interval time.Duration) GeneratorOption {
	return func(g *Generator) {
		if interval > 0 {
			g.interval = interval
		}
	}
}

// NewGenerator constructs a report generator.
func NewGenerator(assetSource AssetSource, estimator *evaporation.Estimator, outputDir string, logger *log.Logger, opts ...GeneratorOption) (*Generator, error) {
	if assetSource == nil {
		return nil, errors.New("reports: nil asset source")
	}
	if estimator == nil {
		return nil, errors.New("reports: nil estimator")
	}
	if outputDir == "" {
		return nil, errors.New("reports: empty output dir")
	}
	if logger == nil {
		logger = log.Default()
	}
	gen := &Generator{
		assets:    assetSource,
		estimator: estimator,
		logger:    logger,
		outputDir: outputDir,
		currency:  "GHS",
		interval:  24 * time.Hour,
	}
	for _, opt := range opts {
		opt(gen)
	}
	return gen, nil
}

// Start generates a report set immediately, then repeats on the
// configured interval until the context is cancelled.
func (g *Generator) Start(ctx context.Context) {
	if g == nil {
		return
	}
	if err := g.GenerateAll(ctx); err != nil {
		g.logger.Printf("reports: initial generation failed: %v", err)
	}
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.GenerateAll(ctx); err != nil {
				g.logger.Printf("reports: generation failed: %v", err)
			}
		}
	}
}

// GenerateAll writes XLSX and PDF loss reports for every storage tank.
func (g *Generator) GenerateAll(ctx context.Context) error {
	tanks, err := g.assets.ListByKind(ctx, assets.KindStorageTank)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return err
	}
	for i := range tanks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.generateTank(&tanks[i]); err != nil {
			g.logger.Printf("reports: tank %s: %v", tanks[i].ID, err)
		}
	}
	return nil
}

func (g *Generator) generateTank(tank *assets.Asset) error {
	diameter, height := tankDimensions(tank.CapacityLitres)
	report := g.estimator.AnnualLoss(evaporation.AnnualInput{
		TankDiameterM:          diameter,
		TankHeightM:            height,
		ProductCode:            tank.ProductCode,
		AnnualThroughputLitres: tank.CapacityLitres * 12,
		MonthlyAvgTempsC:       g.avgTemps,
		MonthlyTempRangesC:     g.tempRanges,
		PaintColor:             "white",
		PricePerLitre:          g.pricePerLitre,
		Currency:               g.currency,
	})
	loss := &LossReport{
		AssetID:     tank.ID,
		ProductCode: tank.ProductCode,
		GeneratedAt: time.Now().UTC(),
		Report:      report,
	}

	started := time.Now()
	xlsx, err := BuildLossXLSX(loss)
	if err != nil {
		metrics.ObserveReportExport("xlsx", metrics.ResultError, time.Since(started))
		return err
	}
	if err := g.write(tank.ID, "xlsx", xlsx); err != nil {
		metrics.ObserveReportExport("xlsx", metrics.ResultError, time.Since(started))
		return err
	}
	metrics.ObserveReportExport("xlsx", metrics.ResultSuccess, time.Since(started))

	started = time.Now()
	pdf, err := BuildLossPDF(loss)
	if err != nil {
		metrics.ObserveReportExport("pdf", metrics.ResultError, time.Since(started))
		return err
	}
	if err := g.write(tank.ID, "pdf", pdf); err != nil {
		metrics.ObserveReportExport("pdf", metrics.ResultError, time.Since(started))
		return err
	}
	metrics.ObserveReportExport("pdf", metrics.ResultSuccess, time.Since(started))
	return nil
}

func (g *Generator) write(assetID, ext string, data []byte) error {
	name := fmt.Sprintf("loss_%s.%s", assetID, ext)
	return os.WriteFile(filepath.Join(g.outputDir, name), data, 0o644)
}

// tankDimensions estimates a cylinder from capacity assuming height = 3r.
func tankDimensions(capacityLitres float64) (diameterM, heightM float64) {
	if capacityLitres <= 0 {
		return 0, 0
	}
	volumeM3 := capacityLitres / 1000
	radius := math.Cbrt(volumeM3 / (3 * math.Pi))
	return 2 * radius, 3 * radius
}
