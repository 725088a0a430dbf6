package loader

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fluxo/internal/core"
)

// DefaultDateFormat is dd/mm/yyyy.
const DefaultDateFormat = "02/01/2006"

var fallbackLayouts = []string{
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var errUnparseableDate = errors.New("unparseable date")

// parseDate accepts the configured layout, the fallbacks, and Excel serial
// numbers from typed spreadsheets. The time of day is dropped.
func parseDate(s, layout string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, errUnparseableDate
	}
	for _, l := range append([]string{layout}, fallbackLayouts...) {
		if l == "" {
			continue
		}
		if t, err := time.Parse(l, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return core.Date{}, errUnparseableDate
}
