package export

import (
	"fmt"
	"io"

	"nailsxlauren/internal/domain"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the bookings.
const SheetName = "Bookings"

var columnWidths = []float64{24, 16, 28, 15, 14, 48, 18, 12}

// WriteXLSX writes a workbook with a bold header, one row per booking and
// an estimated revenue row at the bottom.
func WriteXLSX(w io.Writer, rows []domain.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F6DCE6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	for i, header := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}

	for i, b := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			b.FullName,
			b.PhoneNumber,
			domain.Deref(b.Email),
			domain.Deref(b.PreferredDate),
			domain.Deref(b.PreferredTime),
			domain.Deref(b.Message),
			b.CreatedOn.UTC().Format(createdOnLayout),
			nil,
		}
		if b.InitPrice != nil {
			values[7] = *b.InitPrice
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	totalRow := len(rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(len(Columns)-1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(len(Columns), totalRow)
	if err := f.SetCellValue(SheetName, labelCell, RevenueLabel); err != nil {
		return fmt.Errorf("error writing revenue label: %w", err)
	}
	if err := f.SetCellValue(SheetName, valueCell, EstimatedRevenue(rows)); err != nil {
		return fmt.Errorf("error writing revenue: %w", err)
	}
	if err := f.SetCellStyle(SheetName, labelCell, valueCell, bold); err != nil {
		return fmt.Errorf("error styling revenue: %w", err)
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetName, col, col, width)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
