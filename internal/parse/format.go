package parse

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// FormatDay renders a date as "16 October".
func FormatDay(d strfmt.Date) string {
	t := time.Time(d)
	return fmt.Sprintf("%d %s", t.Day(), t.Month())
}

// FormatRange renders "12 - 18 Oct" within a month, "28 Sep - 4 Oct" across.
func FormatRange(start, end strfmt.Date) string {
	s, e := time.Time(start), time.Time(end)
	if s.Month() == e.Month() {
		return fmt.Sprintf("%d - %d %s", s.Day(), e.Day(), e.Format("Jan"))
	}
	return fmt.Sprintf("%d %s - %d %s", s.Day(), s.Format("Jan"), e.Day(), e.Format("Jan"))
}
