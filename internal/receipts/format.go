package receipts

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatCurrency renders an amount in soles, e.g. "S/ 1,234.50".
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sS/ %s.%02d", sign, b.String(), cents%100)
}

// FormatDay renders a calendar day as "25 de julio de 2024". Unparseable
// input is returned unchanged.
func FormatDay(day string) string {
	t, err := time.Parse(clinictime.DayLayout, day)
	if err != nil {
		return day
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// FormatStamp renders an RFC 3339 timestamp in loc as "25 jul 2024, 10:00".
func FormatStamp(stamp string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), monthNames[t.Month()-1][:3], t.Year(), t.Hour(), t.Minute())
}
