// Calendar primitives.
//
// Julian days count from 31 December 1899. Clock times may be written
// 1200, 12:00 or 12:00:00; 2400 is midnight at the end of the day and
// renders that way too, so midnight always belongs to the day it ends.
package store

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jpl-au/hecdss"
)

var epoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 86400

// dateLayouts are tried in order. Month names match case-insensitively.
var dateLayouts = []string{
	"02Jan2006",
	"2Jan2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

var clockSuffix = regexp.MustCompile(`^(.+?)[\sT:]+(\d{4}|\d{1,2}:\d{2}(?::\d{2})?)$`)

func julianOf(t time.Time) int {
	return int(floorDiv(t.Unix()-epoch.Unix(), secondsPerDay))
}

func dayOf(julian int) time.Time {
	return epoch.AddDate(0, 0, julian)
}

func parseDate(text string) (int, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return julianOf(t), true
		}
	}
	return 0, false
}

// parseClock returns seconds past midnight; 2400 yields a full day.
func parseClock(text string) (int, bool) {
	var h, m, s int
	var err error
	switch parts := strings.Split(text, ":"); len(parts) {
	case 1:
		if len(text) != 4 {
			return 0, false
		}
		if h, err = strconv.Atoi(text[:2]); err != nil {
			return 0, false
		}
		if m, err = strconv.Atoi(text[2:]); err != nil {
			return 0, false
		}
	case 2, 3:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, false
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, false
		}
		if len(parts) == 3 {
			if s, err = strconv.Atoi(parts[2]); err != nil {
				return 0, false
			}
		}
	default:
		return 0, false
	}

	if h == 24 && m == 0 && s == 0 {
		return secondsPerDay, true
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, false
	}
	return h*3600 + m*60 + s, true
}

// ParseDateTime parses a date with an optional clock time.
func (e *Engine) ParseDateTime(text string) (julian, seconds, status int) {
	text = strings.TrimSpace(text)
	if j, ok := parseDate(text); ok {
		return j, 0, 0
	}

	m := clockSuffix.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, -1
	}
	j, ok := parseDate(m[1])
	if !ok {
		return 0, 0, -1
	}
	sec, ok := parseClock(m[2])
	if !ok {
		return 0, 0, -1
	}
	if sec == secondsPerDay {
		return j + 1, 0, 0
	}
	return j, sec, 0
}

// FormatDateTime renders value units of granularity seconds past midnight
// of base. The date uses the mixed-case format; the clock is HHMM, or
// HH:MM:SS at second granularity.
func (e *Engine) FormatDateTime(value, granularity, base, dateSize, timeSize int) (date, clock string, status int) {
	if _, err := hecdss.GranularityFromSeconds(granularity); err != nil {
		return "", "", -1
	}

	total := int64(base)*secondsPerDay + int64(value)*int64(granularity)
	julian := floorDiv(total, secondsPerDay)
	sod := int(total - julian*secondsPerDay)
	if sod == 0 {
		julian--
		sod = secondsPerDay
	}

	date = dayOf(int(julian)).Format("02Jan2006")
	h, m, s := sod/3600, sod%3600/60, sod%60
	if granularity == int(hecdss.Second) {
		clock = pad2(h) + ":" + pad2(m) + ":" + pad2(s)
	} else {
		clock = pad2(h) + pad2(m)
	}
	return truncate(date, dateSize), truncate(clock, timeSize), 0
}

// DateToJulian returns hecdss.UndefinedJulian when text is not a date.
func (e *Engine) DateToJulian(text string) int {
	if j, ok := parseDate(text); ok {
		return j
	}
	return hecdss.UndefinedJulian
}

// JulianToDate renders days in one of the hecdss.DateFormat codes.
func (e *Engine) JulianToDate(days, format, size int) (string, int) {
	t := dayOf(days)
	var s string
	switch format {
	case 0, hecdss.DateFormatUpper:
		s = strings.ToUpper(t.Format("02Jan2006"))
	case hecdss.DateFormatMixed:
		s = t.Format("02Jan2006")
	case hecdss.DateFormatLong:
		s = t.Format("January 2, 2006")
	case hecdss.DateFormatShort:
		s = t.Format("Jan 2, 2006")
	case hecdss.DateFormatDayFirst:
		s = t.Format("2 January 2006")
	case hecdss.DateFormatISO:
		s = t.Format("2006-01-02")
	default:
		return "", -1
	}
	return truncate(s, size), 0
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// truncate fits s into a terminated buffer of size bytes.
func truncate(s string, size int) string {
	if size > 0 && len(s) > size-1 {
		return s[:size-1]
	}
	return s
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
