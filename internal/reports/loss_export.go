package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"depot-twin/internal/physics/evaporation"
)

// LossReport is one tank's annual evaporative-loss estimate prepared for
// export.
type LossReport struct {
	AssetID     string
	ProductCode string
	GeneratedAt time.Time
	Report      evaporation.AnnualReport
}

// BuildLossPDF renders the annual loss estimate as a PDF.
func BuildLossPDF(r *LossReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Annual Evaporative Loss Estimate")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Tank: %s", r.AssetID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Product: %s", r.ProductCode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Standing Loss (kg): %.1f", r.Report.StandingLossKg))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Working Loss (kg): %.1f", r.Report.WorkingLossKg))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Loss (kg): %.1f", r.Report.TotalLossKg))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Loss (Litres): %.1f", r.Report.TotalLossLitres))
	pdf.Ln(5)
	if r.Report.EconomicLoss > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Economic Loss (%s): %.2f", r.Report.Currency, r.Report.EconomicLoss))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Standing (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Working (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Total (kg)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, month := range r.Report.Monthly {
		pdf.CellFormat(30, 6, month.Month, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", month.StandingLossKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", month.WorkingLossKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", month.TotalLossKg), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildLossXLSX renders the annual loss estimate as an XLSX workbook.
func BuildLossXLSX(r *LossReport) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	monthlySheet := "monthly"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(monthlySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Annual Evaporative Loss Estimate")
	_ = f.SetCellValue(summarySheet, "A3", "Tank")
	_ = f.SetCellValue(summarySheet, "B3", r.AssetID)
	_ = f.SetCellValue(summarySheet, "A4", "Product")
	_ = f.SetCellValue(summarySheet, "B4", r.ProductCode)
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", r.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Standing Loss (kg)")
	_ = f.SetCellValue(summarySheet, "B6", r.Report.StandingLossKg)
	_ = f.SetCellValue(summarySheet, "A7", "Working Loss (kg)")
	_ = f.SetCellValue(summarySheet, "B7", r.Report.WorkingLossKg)
	_ = f.SetCellValue(summarySheet, "A8", "Total Loss (kg)")
	_ = f.SetCellValue(summarySheet, "B8", r.Report.TotalLossKg)
	_ = f.SetCellValue(summarySheet, "A9", "Total Loss (Litres)")
	_ = f.SetCellValue(summarySheet, "B9", r.Report.TotalLossLitres)
	_ = f.SetCellValue(summarySheet, "A10", "Economic Loss")
	_ = f.SetCellValue(summarySheet, "B10", r.Report.EconomicLoss)
	_ = f.SetCellValue(summarySheet, "A11", "Currency")
	_ = f.SetCellValue(summarySheet, "B11", r.Report.Currency)

	_ = f.SetCellValue(monthlySheet, "A1", "Month")
	_ = f.SetCellValue(monthlySheet, "B1", "Standing (kg)")
	_ = f.SetCellValue(monthlySheet, "C1", "Working (kg)")
	_ = f.SetCellValue(monthlySheet, "D1", "Total (kg)")
	_ = f.SetCellValue(monthlySheet, "E1", "Avg Temp (C)")
	for i, month := range r.Report.Monthly {
		row := i + 2
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("A%d", row), month.Month)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("B%d", row), month.StandingLossKg)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("C%d", row), month.WorkingLossKg)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("D%d", row), month.TotalLossKg)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("E%d", row), month.AverageTempC)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
