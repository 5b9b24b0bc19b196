package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"depot-twin/internal/physics/massbalance"
)

// TransferRecord pairs a reconciled transfer with its identities for export.
type TransferRecord struct {
	SourceAssetID      string
	DestinationAssetID string
	ProductCode        string
	CompletedAt        time.Time
	Result             massbalance.ReconciliationResult
}

// ReconciliationReport is a batch of transfer audits prepared for export.
type ReconciliationReport struct {
	DepotID     string
	GeneratedAt time.Time
	Transfers   []TransferRecord
}

// BuildReconciliationPDF renders a transfer audit batch as a PDF.
func BuildReconciliationPDF(r *ReconciliationReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Transfer Reconciliation Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if r.DepotID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Depot: %s", r.DepotID))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(28, 6, "Source", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Destination", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Source Change (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Dest Change (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Metered (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Discrepancy (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "%", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, transfer := range r.Transfers {
		result := transfer.Result
		pdf.CellFormat(28, 6, transfer.SourceAssetID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, transfer.DestinationAssetID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, transfer.ProductCode, "1", 0, "C", false, 0, "")
		pdf.CellFormat(34, 6, fmt.Sprintf("%.1f", result.SourceMassChangeKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(34, 6, fmt.Sprintf("%.1f", result.DestinationMassChangeKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", result.MeteredMassKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(34, 6, fmt.Sprintf("%.1f", result.DiscrepancyKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", result.DiscrepancyPercent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, result.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReconciliationXLSX renders a transfer audit batch as an XLSX workbook.
func BuildReconciliationXLSX(r *ReconciliationReport) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "transfers"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Source", "Destination", "Product", "Completed",
		"Source Change (kg)", "Dest Change (kg)", "Metered (kg)",
		"Discrepancy (kg)", "Discrepancy (%)", "Status", "Details",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	for row, transfer := range r.Transfers {
		result := transfer.Result
		values := []any{
			transfer.SourceAssetID,
			transfer.DestinationAssetID,
			transfer.ProductCode,
			transfer.CompletedAt.Format(time.RFC3339),
			result.SourceMassChangeKg,
			result.DestinationMassChangeKg,
			result.MeteredMassKg,
			result.DiscrepancyKg,
			result.DiscrepancyPercent,
			result.Status,
			result.Details,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
