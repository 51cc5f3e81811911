// Package export renders a page of bookings as CSV, XLSX or PDF for the admin dashboard.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"nailsxlauren/internal/domain"
)

// Format is an export file type
type Format string

// Supported formats
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Range is a created-on window relative to now
type Range string

// Supported ranges
const (
	RangeAll      Range = "all"
	RangeMonth    Range = "1m"
	RangeQuarter  Range = "3m"
	RangeHalfYear Range = "6m"
	RangeFullYear Range = "12m"
)

// RevenueLabel labels the non-authoritative total row.
const RevenueLabel = "Estimated revenue"

const createdOnLayout = "2006-01-02 15:04"

// Columns is the header shared by every format.
var Columns = []string{
	"Full Name",
	"Phone Number",
	"Email",
	"Preferred Date",
	"Preferred Time",
	"Message",
	"Created On",
	"Init Price",
}

var rangeMonths = map[Range]int{
	RangeMonth:    1,
	RangeQuarter:  3,
	RangeHalfYear: 6,
	RangeFullYear: 12,
}

// ParseFormat validates a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ParseRange validates a range name. Empty means all.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if r == "" || r == RangeAll {
		return RangeAll, nil
	}
	if _, ok := rangeMonths[r]; !ok {
		return "", fmt.Errorf("unsupported export range %q", s)
	}
	return r, nil
}

// Since returns the start of the window, or false for RangeAll.
func (r Range) Since(now time.Time) (time.Time, bool) {
	months, ok := rangeMonths[r]
	if !ok {
		return time.Time{}, false
	}
	return now.AddDate(0, -months, 0), true
}

// Filter keeps the bookings created inside the range.
func Filter(rows []domain.Booking, r Range, now time.Time) []domain.Booking {
	since, ok := r.Since(now)
	if !ok {
		return rows
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, b := range rows {
		if !b.CreatedOn.Before(since) {
			out = append(out, b)
		}
	}
	return out
}

// EstimatedRevenue sums init prices. It is a display estimate only.
func EstimatedRevenue(rows []domain.Booking) float64 {
	var total float64
	for _, b := range rows {
		if b.InitPrice != nil {
			total += *b.InitPrice
		}
	}
	return total
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename names the download for a given page.
func Filename(f Format, page int) string {
	return fmt.Sprintf("bookings-page%d.%s", page, f)
}

// Write renders rows in the given format.
func Write(w io.Writer, f Format, rows []domain.Booking) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatPDF:
		return WritePDF(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// record flattens a booking into the Columns order.
func record(b domain.Booking) []string {
	return []string{
		b.FullName,
		b.PhoneNumber,
		domain.Deref(b.Email),
		domain.Deref(b.PreferredDate),
		domain.Deref(b.PreferredTime),
		domain.Deref(b.Message),
		b.CreatedOn.UTC().Format(createdOnLayout),
		formatPrice(b.InitPrice),
	}
}

func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
