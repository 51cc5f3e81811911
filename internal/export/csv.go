package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"nailsxlauren/internal/domain"
)

// WriteCSV writes a header row followed by one row per booking.
func WriteCSV(w io.Writer, rows []domain.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range rows {
		rec := record(b)
		for i := range rec {
			rec[i] = escapeFormula(rec[i])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formulaTriggers are leading characters a spreadsheet reads as a formula.
const formulaTriggers = "=+-@\t\r"

// escapeFormula makes a spreadsheet show s as text by prefixing a quote.
func escapeFormula(s string) string {
	if s != "" && strings.IndexByte(formulaTriggers, s[0]) >= 0 {
		return "'" + s
	}
	return s
}
