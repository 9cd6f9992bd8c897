package store

import (
	"testing"

	"github.com/jpl-au/hecdss"
)

func storeRegular(t *testing.T, e *Engine, h hecdss.Handle, path string, values []float32) {
	t.Helper()
	ts := &hecdss.TSStruct{
		Pathname:     path,
		FloatValues:  values,
		NumberValues: len(values),
		StartDate:    "01Jan2020",
		StartTime:    "0100",
		Units:        "cfs",
		Type:         "INST-VAL",
	}
	if status := e.StoreTimeSeries(h, ts, hecdss.WriteFlags{}); status != 0 {
		t.Fatalf("StoreTimeSeries(%s): %+v", path, e.LastError(h))
	}
}

func retrieve(t *testing.T, e *Engine, h hecdss.Handle, path string, flags hecdss.ReadFlags) *hecdss.TSStruct {
	t.Helper()
	ts := e.NewTSStruct(path)
	if status := e.RetrieveTimeSeries(h, ts, flags); status != 0 {
		t.Fatalf("RetrieveTimeSeries(%s): %+v", path, e.LastError(h))
	}
	return ts
}

func TestRegularRoundTrip(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	storeRegular(t, e, h, "/BASIN/LOC/FLOW//1Hour/OBS/", []float32{450, 460, 470})

	ts := retrieve(t, e, h, "/BASIN/LOC/FLOW//1Hour/OBS/", hecdss.ReadFlags{})
	defer e.FreeTimeSeries(ts)

	if ts.NumberValues != 3 {
		t.Fatalf("NumberValues = %d, want 3", ts.NumberValues)
	}
	for i, want := range []float64{450, 460, 470} {
		if ts.DoubleValues[i] != want {
			t.Errorf("value[%d] = %v, want %v", i, ts.DoubleValues[i], want)
		}
	}
	if ts.IntervalSeconds != 3600 {
		t.Errorf("IntervalSeconds = %d, want 3600", ts.IntervalSeconds)
	}
	if ts.StartJulianDate != 43830 || ts.StartTimeSeconds != 3600 {
		t.Errorf("start = day %d + %ds, want day 43830 + 3600s", ts.StartJulianDate, ts.StartTimeSeconds)
	}
	if ts.Units != "cfs" || ts.Type != "INST-VAL" {
		t.Errorf("labels = %q/%q, want cfs/INST-VAL", ts.Units, ts.Type)
	}
}

func TestRetrieveIgnoresCase(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	storeRegular(t, e, h, "/Basin/Loc/Flow//1Hour/Obs/", []float32{1})

	ts := retrieve(t, e, h, "/BASIN/LOC/FLOW//1HOUR/OBS/", hecdss.ReadFlags{})
	defer e.FreeTimeSeries(ts)
	if ts.NumberValues != 1 {
		t.Errorf("NumberValues = %d, want 1", ts.NumberValues)
	}
}

func TestIrregularRoundTrip(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())

	in := &hecdss.TSStruct{
		Pathname:           "/BASIN/LOC/STAGE//IR-DAY/OBS/",
		DoubleValues:       []float64{1.5, 2.5, 3.5},
		Times:              []int{0, 90, 600},
		NumberValues:       3,
		GranularitySeconds: 60,
		BaseDate:           "02Jan2020",
		Units:              "feet",
	}
	if status := e.StoreTimeSeries(h, in, hecdss.WriteFlags{}); status != 0 {
		t.Fatalf("store: %+v", e.LastError(h))
	}

	ts := retrieve(t, e, h, in.Pathname, hecdss.ReadFlags{})
	defer e.FreeTimeSeries(ts)

	if ts.IntervalSeconds != 0 {
		t.Errorf("IntervalSeconds = %d, want 0", ts.IntervalSeconds)
	}
	if ts.JulianBaseDate != 43831 {
		t.Errorf("JulianBaseDate = %d, want 43831", ts.JulianBaseDate)
	}
	if ts.GranularitySeconds != 60 {
		t.Errorf("GranularitySeconds = %d, want 60", ts.GranularitySeconds)
	}
	for i := range in.Times {
		if ts.Times[i] != in.Times[i] || ts.DoubleValues[i] != in.DoubleValues[i] {
			t.Errorf("sample %d = (%d, %v), want (%d, %v)", i, ts.Times[i], ts.DoubleValues[i], in.Times[i], in.DoubleValues[i])
		}
	}
}

func TestStoreOverwrites(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	storeRegular(t, e, h, "/A/B/C//1Day/F/", []float32{1, 2})
	storeRegular(t, e, h, "/A/B/C//1Day/F/", []float32{3, 4, 5})

	ts := retrieve(t, e, h, "/A/B/C//1Day/F/", hecdss.ReadFlags{})
	defer e.FreeTimeSeries(ts)
	if ts.NumberValues != 3 || ts.DoubleValues[0] != 3 {
		t.Errorf("values = %v, want [3 4 5]", ts.DoubleValues)
	}
}

func TestStoreNoOverwrite(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	storeRegular(t, e, h, "/A/B/C//1Day/F/", []float32{1})

	ts := &hecdss.TSStruct{
		Pathname:     "/A/B/C//1Day/F/",
		FloatValues:  []float32{9},
		NumberValues: 1,
		StartDate:    "01Jan2020",
	}
	if status := e.StoreTimeSeries(h, ts, hecdss.WriteFlags{NoOverwrite: true}); status == 0 {
		t.Fatal("NoOverwrite store succeeded over an existing record")
	}
	ne := e.LastError(h)
	if ne.Category != hecdss.CategoryFile || ne.Code != int(hecdss.RecordAlreadyExists) {
		t.Errorf("LastError = %+v, want FILE/RECORD_ALREADY_EXISTS", ne)
	}
}

func TestStoreValidation(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())

	tests := []struct {
		name string
		ts   *hecdss.TSStruct
		want hecdss.ErrorKind
	}{
		{"empty pathname", &hecdss.TSStruct{NumberValues: 1, FloatValues: []float32{1}}, hecdss.NullPathname},
		{"bad pathname", &hecdss.TSStruct{Pathname: "A/B", NumberValues: 1, FloatValues: []float32{1}}, hecdss.InvalidPathname},
		{"no values", &hecdss.TSStruct{Pathname: "/A/B/C//1Day/F/"}, hecdss.NoDataGiven},
		{"short buffer", &hecdss.TSStruct{Pathname: "/A/B/C//1Day/F/", NumberValues: 3, FloatValues: []float32{1}}, hecdss.InvalidNumberToWrite},
		{"no interval", &hecdss.TSStruct{Pathname: "/A/B/C///F/", NumberValues: 1, FloatValues: []float32{1}, StartDate: "01Jan2020"}, hecdss.InvalidInterval},
		{"bad start", &hecdss.TSStruct{Pathname: "/A/B/C//1Day/F/", NumberValues: 1, FloatValues: []float32{1}, StartDate: "someday"}, hecdss.InvalidDateTime},
		{"bad granularity", &hecdss.TSStruct{Pathname: "/A/B/C//1Day/F/", NumberValues: 1, FloatValues: []float32{1}, GranularitySeconds: 7}, hecdss.InvalidParameter},
		{"times not ascending", &hecdss.TSStruct{Pathname: "/A/B/C//IR-DAY/F/", NumberValues: 2, DoubleValues: []float64{1, 2}, Times: []int{5, 5}, BaseDate: "01Jan2020"}, hecdss.TimesNotAscending},
		{"short times", &hecdss.TSStruct{Pathname: "/A/B/C//IR-DAY/F/", NumberValues: 2, DoubleValues: []float64{1, 2}, Times: []int{5}, BaseDate: "01Jan2020"}, hecdss.InvalidNumberToWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := e.StoreTimeSeries(h, tt.ts, hecdss.WriteFlags{}); status == 0 {
				t.Fatal("store succeeded")
			}
			if code := e.LastError(h).Code; code != int(tt.want) {
				t.Errorf("code = %s, want %s", hecdss.KindFromCode(code), tt.want)
			}
		})
	}
}

func TestRetrieveMissingRecord(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())

	ts := e.NewTSStruct("/A/B/C//1Day/F/")
	defer e.FreeTimeSeries(ts)
	if status := e.RetrieveTimeSeries(h, ts, hecdss.ReadFlags{}); status == 0 {
		t.Fatal("retrieve succeeded")
	}
	ne := e.LastError(h)
	if ne.Category != hecdss.CategoryFile || ne.Code != int(hecdss.RecordDoesNotExist) {
		t.Errorf("LastError = %+v, want FILE/RECORD_DOES_NOT_EXIST", ne)
	}
}

func TestRetrieveWrongKind(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	storePaired(t, e, h, "/A/B/C///F/", 2, 1)

	ts := e.NewTSStruct("/A/B/C///F/")
	defer e.FreeTimeSeries(ts)
	if status := e.RetrieveTimeSeries(h, ts, hecdss.ReadFlags{}); status == 0 {
		t.Fatal("retrieve of paired data as a series succeeded")
	}
	if code := e.LastError(h).Code; code != int(hecdss.WrongRecordType) {
		t.Errorf("code = %d, want %d", code, hecdss.WrongRecordType)
	}
}

func TestTrimMissingRegular(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	m := float32(hecdss.Missing)
	storeRegular(t, e, h, "/A/B/C//1Hour/F/", []float32{m, -901, 5, 6, m})

	ts := retrieve(t, e, h, "/A/B/C//1Hour/F/", hecdss.ReadFlags{TrimMissing: true})
	defer e.FreeTimeSeries(ts)

	if ts.NumberValues != 2 || ts.DoubleValues[0] != 5 || ts.DoubleValues[1] != 6 {
		t.Fatalf("values = %v, want [5 6]", ts.DoubleValues[:ts.NumberValues])
	}
	// Stored start is 0100; two hourly samples dropped.
	if ts.StartJulianDate != 43830 || ts.StartTimeSeconds != 3*3600 {
		t.Errorf("start = day %d + %ds, want day 43830 + 10800s", ts.StartJulianDate, ts.StartTimeSeconds)
	}
}

func TestTrimMissingIrregular(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	in := &hecdss.TSStruct{
		Pathname:     "/A/B/C//IR-DAY/F/",
		DoubleValues: []float64{hecdss.Missing, 1, 2, hecdss.UndefinedFlag},
		Times:        []int{1, 2, 3, 4},
		NumberValues: 4,
		BaseDate:     "01Jan2020",
	}
	if status := e.StoreTimeSeries(h, in, hecdss.WriteFlags{}); status != 0 {
		t.Fatalf("store: %+v", e.LastError(h))
	}

	ts := retrieve(t, e, h, in.Pathname, hecdss.ReadFlags{TrimMissing: true})
	defer e.FreeTimeSeries(ts)
	if ts.NumberValues != 2 || ts.Times[0] != 2 || ts.Times[1] != 3 {
		t.Errorf("times = %v, want [2 3]", ts.Times)
	}
}

func TestTrimMissingAll(t *testing.T) {
	e, h, _ := openTestEngine(t, quietConfig())
	m := float32(hecdss.Missing)
	storeRegular(t, e, h, "/A/B/C//1Hour/F/", []float32{m, m})

	ts := retrieve(t, e, h, "/A/B/C//1Hour/F/", hecdss.ReadFlags{TrimMissing: true})
	defer e.FreeTimeSeries(ts)
	if ts.NumberValues != 0 {
		t.Errorf("NumberValues = %d, want 0", ts.NumberValues)
	}
}

func TestFreeTimeSeriesResets(t *testing.T) {
	e := New(quietConfig())
	ts := e.NewTSStruct("/A/B/C//1Day/F/")
	ts.DoubleValues = append(ts.DoubleValues, 1, 2, 3)
	ts.Units = "cfs"
	e.FreeTimeSeries(ts)

	if len(ts.DoubleValues) != 0 || ts.Units != "" || ts.Pathname != "" {
		t.Errorf("FreeTimeSeries left state: %+v", ts)
	}
	e.FreeTimeSeries(nil)
}
