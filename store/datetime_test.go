package store

import (
	"testing"

	"github.com/jpl-au/hecdss"
)

func TestParseDateTime(t *testing.T) {
	e := New(quietConfig())
	tests := []struct {
		text    string
		julian  int
		seconds int
	}{
		{"01Jan2020", 43830, 0},
		{"1jan2020", 43830, 0},
		{"01JAN2020 0100", 43830, 3600},
		{"01Jan2020 12:30", 43830, 45000},
		{"01Jan2020 12:30:15", 43830, 45015},
		{"2020-01-01T06:00", 43830, 21600},
		{"January 1, 2020", 43830, 0},
		{"Jan 2, 2020", 43831, 0},
		{"2 January 2020 0000", 43831, 0},
		{"01/02/2020", 43831, 0},
		{"01Jan1900", 1, 0},
		{"31Dec1899", 0, 0},
		{"01Jan2020 2400", 43831, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			j, s, status := e.ParseDateTime(tt.text)
			if status != 0 {
				t.Fatalf("status = %d", status)
			}
			if j != tt.julian || s != tt.seconds {
				t.Errorf("= (%d, %d), want (%d, %d)", j, s, tt.julian, tt.seconds)
			}
		})
	}
}

func TestParseDateTimeInvalid(t *testing.T) {
	e := New(quietConfig())
	for _, text := range []string{"", "someday", "01Jan2020 2500", "01Jan2020 12:61", "32Jan2020", "01Jan2020 1"} {
		if _, _, status := e.ParseDateTime(text); status == 0 {
			t.Errorf("ParseDateTime(%q) succeeded", text)
		}
	}
}

func TestFormatDateTime(t *testing.T) {
	e := New(quietConfig())
	tests := []struct {
		name               string
		value, gran, base  int
		wantDate, wantTime string
	}{
		{"minutes", 90, 60, 43830, "01Jan2020", "0130"},
		{"seconds", 3661, 1, 43830, "01Jan2020", "01:01:01"},
		{"midnight", 0, 60, 43831, "01Jan2020", "2400"},
		{"next day", 25, 3600, 43830, "02Jan2020", "0100"},
		{"days", 2, 86400, 43830, "02Jan2020", "2400"},
		{"negative", -60, 60, 43830, "31Dec2019", "2300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, clock, status := e.FormatDateTime(tt.value, tt.gran, tt.base, hecdss.DateBufferSize, hecdss.TimeBufferSize)
			if status != 0 {
				t.Fatalf("status = %d", status)
			}
			if date != tt.wantDate || clock != tt.wantTime {
				t.Errorf("= %s %s, want %s %s", date, clock, tt.wantDate, tt.wantTime)
			}
		})
	}
}

func TestFormatDateTimeBadGranularity(t *testing.T) {
	e := New(quietConfig())
	if _, _, status := e.FormatDateTime(1, 7, 0, 13, 10); status == 0 {
		t.Error("granularity 7 accepted")
	}
}

func TestFormatTruncates(t *testing.T) {
	e := New(quietConfig())
	date, _, _ := e.FormatDateTime(0, 60, 43830, 4, 10)
	if date != "31D" {
		t.Errorf("date = %q, want %q", date, "31D")
	}
}

func TestJulianToDate(t *testing.T) {
	e := New(quietConfig())
	tests := []struct {
		format int
		want   string
	}{
		{0, "01JAN2020"},
		{hecdss.DateFormatUpper, "01JAN2020"},
		{hecdss.DateFormatMixed, "01Jan2020"},
		{hecdss.DateFormatLong, "January 1, 2020"},
		{hecdss.DateFormatShort, "Jan 1, 2020"},
		{hecdss.DateFormatDayFirst, "1 January 2020"},
		{hecdss.DateFormatISO, "2020-01-01"},
	}
	for _, tt := range tests {
		got, status := e.JulianToDate(43830, tt.format, hecdss.LongDateBufferSize)
		if status != 0 || got != tt.want {
			t.Errorf("JulianToDate(43830, %d) = %q, %d; want %q", tt.format, got, status, tt.want)
		}
	}

	if _, status := e.JulianToDate(43830, 7, 20); status == 0 {
		t.Error("format 7 accepted")
	}
}

func TestDateToJulian(t *testing.T) {
	e := New(quietConfig())
	if j := e.DateToJulian("02Jan2020"); j != 43831 {
		t.Errorf("DateToJulian = %d, want 43831", j)
	}
	if j := e.DateToJulian("not a date"); j != hecdss.UndefinedJulian {
		t.Errorf("DateToJulian(garbage) = %d, want UndefinedJulian", j)
	}
	if j := e.DateToJulian("30Dec1899"); j != -1 {
		t.Errorf("DateToJulian(30Dec1899) = %d, want -1", j)
	}
}
