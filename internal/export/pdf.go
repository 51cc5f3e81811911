package export

import (
	"fmt"
	"io"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/domain"

	"github.com/go-pdf/fpdf"
)

// PDFTitle heads every exported page.
const PDFTitle = "Bookings"

// column widths in mm; they add up to the printable width of landscape A4 with 10mm margins
var pdfWidths = []float64{38, 30, 45, 25, 20, 62, 35, 22}

const pdfRowHeight = 7

// WritePDF writes a landscape A4 table with page numbers and the estimated revenue line.
func WritePDF(w io.Writer, rows []domain.Booking) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(PDFTitle, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, PDFTitle, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(246, 220, 230)
		for i, header := range Columns {
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 8)
	for _, b := range rows {
		for i, value := range record(b) {
			text := fitText(pdf, tr(value), pdfWidths[i]-2)
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, text, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	total := catalog.FormatPrice(EstimatedRevenue(rows))
	pdf.CellFormat(0, pdfRowHeight, fmt.Sprintf("%s: %s (%d bookings)", RevenueLabel, total, len(rows)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error writing pdf: %w", err)
	}
	return nil
}

// fitText cuts s to the longest prefix that fits width with an ellipsis.
// s is already translated to the single-byte font encoding, so cutting
// bytes is safe. The cut point is found by binary search.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if pdf.GetStringWidth(s[:mid]+"...") <= width {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return s[:lo] + "..."
}
