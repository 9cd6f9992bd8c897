package hecdss_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/hecdss"
)

func TestKindFromInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, hecdss.Irregular, hecdss.KindFromInterval(0))
	assert.Equal(t, hecdss.Irregular, hecdss.KindFromInterval(-5))
	assert.Equal(t, hecdss.Regular, hecdss.KindFromInterval(3600))
	assert.Equal(t, "regular", hecdss.Regular.String())
	assert.Equal(t, "irregular", hecdss.Irregular.String())
}

func TestNewTimeSeries(t *testing.T) {
	t.Parallel()

	reg := hecdss.NewTimeSeries(hecdss.Regular, 3)
	assert.Equal(t, hecdss.Regular, reg.Kind())
	assert.Equal(t, 3, reg.Len())
	_, ok := reg.StartTime()
	assert.False(t, ok)
	_, err := reg.Times(false)
	require.ErrorIs(t, err, hecdss.ErrStartTimeNotSet)

	irr := hecdss.NewTimeSeries(hecdss.Irregular, 2)
	times, err := irr.Times(false)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.Equal(t, hecdss.Minute, times[0].Granularity)

	odd := hecdss.NewTimeSeries(hecdss.SeriesKind(0), -1)
	assert.Equal(t, hecdss.Irregular, odd.Kind())
	assert.Equal(t, 0, odd.Len())
}

func TestSetValues(t *testing.T) {
	t.Parallel()

	ts := hecdss.NewTimeSeries(hecdss.Regular, 2)
	require.NoError(t, ts.SetValues([]float64{1, 2}))
	assert.Equal(t, []float64{1, 2}, ts.Values())

	require.ErrorIs(t, ts.SetValues([]float64{1, 2, 3}), hecdss.ErrLengthMismatch)
	assert.Equal(t, []float64{1, 2}, ts.Values(), "failed set must not modify values")
}

func TestRegularTimes(t *testing.T) {
	t.Parallel()

	ts := hecdss.NewTimeSeries(hecdss.Regular, 3)
	require.ErrorIs(t, ts.SetTimes(nil), hecdss.ErrLengthMismatch)

	start := hecdss.Time{Value: 60, Granularity: hecdss.Minute, Base: 43830}
	require.NoError(t, ts.SetTimes([]hecdss.Time{start, {}}))

	only, err := ts.Times(false)
	require.NoError(t, err)
	assert.Equal(t, []hecdss.Time{start}, only)

	_, err = ts.Times(true)
	require.ErrorIs(t, err, hecdss.ErrIntervalNotSet)

	require.NoError(t, ts.SetInterval(hecdss.Hours(1)))
	all, err := ts.Times(true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 60, all[0].Value)
	assert.Equal(t, 120, all[1].Value)
	assert.Equal(t, 180, all[2].Value)
}

func TestIrregularTimes(t *testing.T) {
	t.Parallel()

	ts := hecdss.NewTimeSeries(hecdss.Irregular, 2)
	times := []hecdss.Time{
		{Value: 10, Granularity: hecdss.Minute, Base: 43830},
		{Value: 25, Granularity: hecdss.Minute, Base: 43830},
	}
	require.ErrorIs(t, ts.SetTimes(times[:1]), hecdss.ErrLengthMismatch)
	require.NoError(t, ts.SetTimes(times))

	start, ok := ts.StartTime()
	require.True(t, ok)
	assert.Equal(t, times[0], start)

	got, err := ts.Times(true)
	require.NoError(t, err)
	got[0].Value = 999
	again, _ := ts.Times(false)
	assert.Equal(t, 10, again[0].Value, "Times returns a copy")

	empty := hecdss.NewTimeSeries(hecdss.Irregular, 0)
	_, ok = empty.StartTime()
	assert.False(t, ok)
}

func TestSetInterval(t *testing.T) {
	t.Parallel()

	ts := hecdss.NewTimeSeries(hecdss.Regular, 1)
	ts.SetPathname(hecdss.MustParsePathname("/A/B/FLOW//1Day/OBS/"))
	require.NoError(t, ts.SetInterval(hecdss.Hours(6)))

	p, ok := ts.Pathname()
	require.True(t, ok)
	assert.Equal(t, "/A/B/FLOW//6Hour/OBS/", p.String())
	iv, ok := ts.Interval()
	require.True(t, ok)
	assert.Equal(t, hecdss.Hours(6), iv)

	require.ErrorIs(t, ts.SetInterval(hecdss.Interval{}), hecdss.ErrInvalidInterval)

	irr := hecdss.NewTimeSeries(hecdss.Irregular, 1)
	require.ErrorIs(t, irr.SetInterval(hecdss.Hours(1)), hecdss.ErrWrongKind)
}

func TestTimeSeriesLabels(t *testing.T) {
	t.Parallel()

	ts := hecdss.NewTimeSeries(hecdss.Regular, 1)
	_, ok := ts.Pathname()
	assert.False(t, ok)

	ts.SetUnit("CFS")
	ts.SetType("inst-val")
	assert.Equal(t, hecdss.CFS, ts.Unit())
	assert.Equal(t, hecdss.InstantValue, ts.Type())
}

func TestSetInterval_NonPositiveCount(t *testing.T) {
	t.Parallel()

	ts := hecdss.NewTimeSeries(hecdss.Regular, 2)
	ts.SetPathname(hecdss.MustParsePathname("/A/B/FLOW//1Hour/OBS/"))

	for _, iv := range []hecdss.Interval{hecdss.Hours(0), hecdss.Minutes(-2), hecdss.Days(0)} {
		require.ErrorIs(t, ts.SetInterval(iv), hecdss.ErrInvalidInterval, iv.String())
	}
	_, ok := ts.Interval()
	assert.False(t, ok)
	p, _ := ts.Pathname()
	assert.Equal(t, "1Hour", p.E)
}

func TestSetTimes_InvalidGranularity(t *testing.T) {
	t.Parallel()

	reg := hecdss.NewTimeSeries(hecdss.Regular, 3)
	require.ErrorIs(t, reg.SetTimes([]hecdss.Time{{Value: 5}}), hecdss.ErrInvalidGranularity)
	require.ErrorIs(t, reg.SetTimes([]hecdss.Time{{Value: 5, Granularity: 7}}), hecdss.ErrInvalidGranularity)
	_, ok := reg.StartTime()
	assert.False(t, ok)

	require.NoError(t, reg.SetInterval(hecdss.Hours(1)))
	_, err := reg.Times(true)
	require.ErrorIs(t, err, hecdss.ErrStartTimeNotSet)

	irr := hecdss.NewTimeSeries(hecdss.Irregular, 2)
	err = irr.SetTimes([]hecdss.Time{{Value: 10}, {Value: 20, Granularity: hecdss.Minute}})
	require.ErrorIs(t, err, hecdss.ErrInvalidGranularity)

	times, err := irr.Times(false)
	require.NoError(t, err)
	for _, tm := range times {
		assert.Equal(t, hecdss.Minute, tm.Granularity, "rejected times must not be stored")
	}
}
