package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Orders"

var ledgerHeaders = []string{
	"Invoice Number", "Customer", "Status", "Tax %", "Discount",
	"Final Total", "Advance", "Due", "Created At",
}

type ExportService struct {
	reports *ReportService
}

func NewExportService(reports *ReportService) *ExportService {
	return &ExportService{reports: reports}
}

// OrdersWorkbook writes the per-order ledger to an XLSX workbook.
func (s *ExportService) OrdersWorkbook(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	rows, err := s.reports.Ledger(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, err
	}

	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ledgerSheet, cell, h); err != nil {
			return nil, err
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(ledgerSheet, 1, 1, boldStyle)
	}

	for i, r := range rows {
		rowNum := i + 2
		values := []interface{}{
			r.InvoiceNumber, r.CustomerName, r.Status, r.Tax, r.Discount,
			r.FinalTotal, r.AdvanceAmount, r.DueAmount, r.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellValue(ledgerSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
