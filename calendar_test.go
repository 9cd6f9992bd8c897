package hecdss_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/hecdss"
	"github.com/jpl-au/hecdss/store"
)

func testCalendar() hecdss.Calendar {
	return store.New(store.Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestNewTime(t *testing.T) {
	t.Parallel()

	tm, err := hecdss.NewTime(5, 0, 43830)
	require.NoError(t, err)
	assert.Equal(t, hecdss.Time{Value: 5, Granularity: hecdss.Minute, Base: 43830}, tm)

	_, err = hecdss.NewTime(1, hecdss.Granularity(7), 0)
	require.ErrorIs(t, err, hecdss.ErrInvalidGranularity)
}

func TestGranularityFromSeconds(t *testing.T) {
	t.Parallel()

	g, err := hecdss.GranularityFromSeconds(3600)
	require.NoError(t, err)
	assert.Equal(t, hecdss.Hour, g)
	assert.Equal(t, "hour", g.String())

	_, err = hecdss.GranularityFromSeconds(7)
	require.ErrorIs(t, err, hecdss.ErrInvalidGranularity)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	cal := testCalendar()
	tests := []struct {
		text string
		g    hecdss.Granularity
		want hecdss.Time
	}{
		{"01Jan2020 0100", hecdss.Minute, hecdss.Time{Value: 60, Granularity: hecdss.Minute, Base: 43830}},
		{"01Jan2020 0100", hecdss.Second, hecdss.Time{Value: 3600, Granularity: hecdss.Second, Base: 43830}},
		{"01Jan2020 0130", hecdss.Hour, hecdss.Time{Value: 1, Granularity: hecdss.Hour, Base: 43830}},
		{"01Jan2020 2400", hecdss.Minute, hecdss.Time{Value: 0, Granularity: hecdss.Minute, Base: 43831}},
		{"02Jan2020", 0, hecdss.Time{Value: 0, Granularity: hecdss.Minute, Base: 43831}},
	}
	for _, tt := range tests {
		got, err := hecdss.ParseTime(cal, tt.text, tt.g)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestParseTimeAt(t *testing.T) {
	t.Parallel()

	got, err := hecdss.ParseTimeAt(testCalendar(), "01Jan2020 0100", 43829, hecdss.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1500, got.Value)
	assert.Equal(t, 43829, got.Base)
}

func TestParseTime_Invalid(t *testing.T) {
	t.Parallel()

	_, err := hecdss.ParseTime(testCalendar(), "the ides of march", hecdss.Minute)
	require.ErrorIs(t, err, hecdss.ErrInvalidDateTime)

	_, err = hecdss.ParseTime(testCalendar(), "01Jan2020", hecdss.Granularity(5))
	require.ErrorIs(t, err, hecdss.ErrInvalidGranularity)
}

func TestTimeFormat(t *testing.T) {
	t.Parallel()

	cal := testCalendar()
	tests := []struct {
		name      string
		tm        hecdss.Time
		date, clk string
	}{
		{"hour one", hecdss.Time{Value: 60, Granularity: hecdss.Minute, Base: 43830}, "01Jan2020", "0100"},
		{"midnight ends previous day", hecdss.Time{Value: 0, Granularity: hecdss.Minute, Base: 43831}, "01Jan2020", "2400"},
		{"seconds", hecdss.Time{Value: 3661, Granularity: hecdss.Second, Base: 43830}, "01Jan2020", "01:01:01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			date, clk, err := tt.tm.Format(cal)
			require.NoError(t, err)
			assert.Equal(t, tt.date, date)
			assert.Equal(t, tt.clk, clk)
		})
	}
}

func TestTimeFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	cal := testCalendar()
	start := hecdss.Time{Value: 0, Granularity: hecdss.Minute, Base: 43831}
	date, clk, err := start.Format(cal)
	require.NoError(t, err)

	back, err := hecdss.ParseTime(cal, date+" "+clk, hecdss.Minute)
	require.NoError(t, err)
	assert.True(t, start.Equal(back))
}

func TestTimeFormat_InvalidGranularity(t *testing.T) {
	t.Parallel()

	_, _, err := hecdss.Time{Value: 1, Granularity: 7}.Format(testCalendar())
	require.ErrorIs(t, err, hecdss.ErrInvalidDateTime)
}

func TestTimeArithmetic(t *testing.T) {
	t.Parallel()

	hour := hecdss.Time{Granularity: hecdss.Hour}
	assert.Equal(t, 1, hour.AddSeconds(5400).Value)
	assert.Equal(t, -1, hour.AddSeconds(-5400).Value)
	assert.Equal(t, 48, hour.Add(2, hecdss.Day).Value)

	day := hecdss.Time{Granularity: hecdss.Day}
	assert.Equal(t, 0, day.Add(12, hecdss.Hour).Value)
}

func TestTimeNormalisation(t *testing.T) {
	t.Parallel()

	tm := hecdss.Time{Value: 1500, Granularity: hecdss.Minute, Base: 43829}
	assert.Equal(t, int64(43829*86400+90000), tm.Seconds())
	assert.Equal(t, 43830, tm.Julian())
	assert.Equal(t, 3600, tm.SecondsOfDay())

	rebased := tm.Rebase(43830, hecdss.Hour)
	assert.Equal(t, hecdss.Time{Value: 1, Granularity: hecdss.Hour, Base: 43830}, rebased)

	same := hecdss.Time{Value: 60, Granularity: hecdss.Minute, Base: 43830}
	assert.True(t, tm.Equal(same))
	assert.Equal(t, 0, tm.Compare(same))
	assert.Equal(t, -1, tm.Compare(same.AddSeconds(60)))

	before := hecdss.Time{Value: -60, Granularity: hecdss.Minute, Base: 43830}
	assert.Equal(t, 43829, before.Julian())
	assert.Equal(t, 82800, before.SecondsOfDay())
}

func TestJulianConversions(t *testing.T) {
	t.Parallel()

	cal := testCalendar()

	days, err := hecdss.DateToJulian(cal, "01Jan2020")
	require.NoError(t, err)
	assert.Equal(t, 43830, days)

	_, err = hecdss.DateToJulian(cal, "not a date")
	require.ErrorIs(t, err, hecdss.ErrInvalidDateTime)

	date, err := hecdss.JulianToDate(cal, 43830, hecdss.DateFormatLong)
	require.NoError(t, err)
	assert.Equal(t, "January 1, 2020", date)

	date, err = hecdss.JulianToDate(cal, 1, hecdss.DateFormatMixed)
	require.NoError(t, err)
	assert.Equal(t, "01Jan1900", date)

	_, err = hecdss.JulianToDate(cal, 43830, 7)
	require.ErrorIs(t, err, hecdss.ErrInvalidDateTime)
}

func TestTime_InvalidGranularityDoesNotPanic(t *testing.T) {
	t.Parallel()

	bad := hecdss.Time{Value: 5, Base: 43830}
	assert.Equal(t, bad, bad.AddSeconds(3600))
	assert.Equal(t, bad, bad.Add(2, hecdss.Hour))

	at := hecdss.Time{Value: 90, Granularity: hecdss.Minute, Base: 43830}
	re := at.Rebase(43830, 0)
	assert.Equal(t, hecdss.Second, re.Granularity)
	assert.Equal(t, 5400, re.Value)
}
