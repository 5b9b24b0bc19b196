package evaporation

// MonthlyLoss is one month's contribution to the annual rollup.
type MonthlyLoss struct {
	Month          string
	StandingLossKg float64
	WorkingLossKg  float64
	TotalLossKg    float64
	AverageTempC   float64
}

// AnnualReport is the yearly evaporative-loss summary for one tank.
type AnnualReport struct {
	TotalLossKg     float64
	TotalLossLitres float64
	StandingLossKg  float64
	WorkingLossKg   float64
	Monthly         []MonthlyLoss
	EconomicLoss    float64
	Currency        string
}

// AnnualInput describes the tank, throughput and climate for a yearly
// estimate. Nil climate slices fall back to a tropical default profile.
type AnnualInput struct {
	TankDiameterM          float64
	TankHeightM            float64
	ProductCode            string
	AnnualThroughputLitres float64
	MonthlyAvgTempsC       []float64
	MonthlyTempRangesC     []float64
	AvgLiquidLevelPercent  float64
	PaintColor             string
	PricePerLitre          float64
	Currency               string
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var daysPerMonth = []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

var defaultMonthlyAvgTemps = []float64{27, 28, 29, 29, 28, 26, 25, 24, 25, 26, 27, 27}

var defaultMonthlyTempRanges = []float64{12, 12, 11, 10, 9, 8, 7, 7, 8, 9, 10, 11}

// AnnualLoss iterates twelve monthly climate profiles and sums standing and
// working losses, with an optional economic valuation.
func (e *Estimator) AnnualLoss(in AnnualInput) AnnualReport {
	avgTemps := in.MonthlyAvgTempsC
	if len(avgTemps) != 12 {
		avgTemps = defaultMonthlyAvgTemps
	}
	tempRanges := in.MonthlyTempRangesC
	if len(tempRanges) != 12 {
		tempRanges = defaultMonthlyTempRanges
	}
	levelPercent := in.AvgLiquidLevelPercent
	if levelPercent <= 0 {
		levelPercent = 50.0
	}

	avgLiquidHeight := in.TankHeightM * levelPercent / 100
	monthlyThroughput := in.AnnualThroughputLitres / 12

	report := AnnualReport{Currency: in.Currency}
	for m := 0; m < 12; m++ {
		standing := e.StandingLosses(StandingInput{
			TankDiameterM: in.TankDiameterM,
			TankHeightM:   in.TankHeightM,
			ProductCode:   in.ProductCode,
			AverageTempC:  avgTemps[m],
			TempRangeC:    tempRanges[m],
			Days:          daysPerMonth[m],
			PaintColor:    in.PaintColor,
			LiquidHeightM: avgLiquidHeight,
		})
		working := e.WorkingLosses(monthlyThroughput, in.ProductCode, avgTemps[m], 1.0)

		report.StandingLossKg += standing.LossKg
		report.WorkingLossKg += working.LossKg
		report.Monthly = append(report.Monthly, MonthlyLoss{
			Month:          monthNames[m],
			StandingLossKg: standing.LossKg,
			WorkingLossKg:  working.LossKg,
			TotalLossKg:    standing.LossKg + working.LossKg,
			AverageTempC:   avgTemps[m],
		})
	}

	report.TotalLossKg = report.StandingLossKg + report.WorkingLossKg
	density := e.VaporProperties(in.ProductCode).LiquidDensity
	report.TotalLossLitres = report.TotalLossKg / density * 1000
	if in.PricePerLitre > 0 {
		report.EconomicLoss = report.TotalLossLitres * in.PricePerLitre
	}
	return report
}
