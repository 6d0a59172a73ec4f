package document

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadDate is returned for a date string matching none of the accepted
// formats.
var ErrBadDate = errors.New("unrecognized date format")

// Date is one parsed date value. Raw always carries the original token so
// export can reproduce it verbatim; ISO is the normalized form used for
// storage and sorting. Open-ended sentinels (present, recent, current) parse
// with Open set and an empty ISO.
type Date struct {
	Raw     string
	ISO     string // YYYY-MM-DD, YYYY-MM or YYYY depending on input precision
	Open    bool
	Clamped bool // day of month was out of range and clamped to 28
}

// openSentinels are accepted case-insensitively and mean "still ongoing".
var openSentinels = map[string]bool{
	"present": true,
	"recent":  true,
	"current": true,
}

var dateLayouts = []struct {
	layout string
	out    string
}{
	{"2006-01-02", "2006-01-02"},
	{"2006-01", "2006-01"},
	{"2006", "2006"},
	{"02-01-2006", "2006-01-02"},
	{"2006/01/02", "2006-01-02"},
}

// ParseDate parses one date token. Accepted formats: YYYY-MM-DD, YYYY-MM,
// YYYY, DD-MM-YYYY, YYYY/MM/DD, plus the open-ended sentinels.
//
// An out-of-range day of month (day 31 in a 30-day month) is clamped to 28
// and flagged, not rejected. That loses the original day; callers surface
// Clamped as a warning.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty string", ErrBadDate)
	}

	if openSentinels[strings.ToLower(s)] {
		return Date{Raw: raw, Open: true}, nil
	}

	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err == nil {
			return Date{Raw: raw, ISO: t.Format(l.out)}, nil
		}
		// time.Parse rejects day-of-month overflow ("day out of range").
		// Retry with the day clamped before giving up on this layout.
		if strings.Contains(err.Error(), "day out of range") {
			if d, ok := clampDay(s, l.layout, l.out); ok {
				d.Raw = raw
				return d, nil
			}
		}
	}

	return Date{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
}

// clampDay replaces the day component with 28 and reparses. 28 is valid in
// every month, which is the whole trick.
func clampDay(s, layout, out string) (Date, bool) {
	var clamped string
	switch layout {
	case "2006-01-02":
		if len(s) != 10 {
			return Date{}, false
		}
		clamped = s[:8] + "28"
	case "2006/01/02":
		if len(s) != 10 {
			return Date{}, false
		}
		clamped = s[:8] + "28"
	case "02-01-2006":
		if len(s) != 10 {
			return Date{}, false
		}
		clamped = "28" + s[2:]
	default:
		return Date{}, false
	}

	t, err := time.Parse(layout, clamped)
	if err != nil {
		return Date{}, false
	}
	return Date{ISO: t.Format(out), Clamped: true}, true
}

// ParseOptionalDate parses a nullable date field. A nil pointer yields a
// zero Date and no error.
func ParseOptionalDate(raw *string) (Date, error) {
	if raw == nil {
		return Date{}, nil
	}
	return ParseDate(*raw)
}
