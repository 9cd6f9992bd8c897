package hecdss_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jpl-au/hecdss"
	"github.com/jpl-au/hecdss/store"
)

func Example() {
	dir, err := os.MkdirTemp("", "hecdss-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := hecdss.Open(store.New(store.Config{Logger: quietLogger()}),
		filepath.Join(dir, "example.dss"), hecdss.Config{Logger: quietLogger()})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	p := hecdss.MustParsePathname("/RIVER/GAUGE/FLOW//1Hour/OBS/")
	start, err := hecdss.ParseTime(s.Calendar(), "01Jan2020 0100", hecdss.Minute)
	if err != nil {
		log.Fatal(err)
	}

	ts := hecdss.NewTimeSeries(hecdss.Regular, 3)
	ts.SetPathname(p)
	ts.SetValues([]float64{120, 135, 150})
	ts.SetTimes([]hecdss.Time{start})
	ts.SetUnit("CFS")
	ts.SetType("inst-val")
	if err := s.WriteTimeSeries(ts, hecdss.WriteFlags{}); err != nil {
		log.Fatal(err)
	}

	got, err := s.ReadTimeSeries(p, hecdss.ReadFlags{})
	if err != nil {
		log.Fatal(err)
	}
	times, _ := got.Times(true)
	for i, t := range times {
		date, clock, _ := t.Format(s.Calendar())
		fmt.Println(date, clock, got.Values()[i], got.Unit(), got.Type())
	}

	_, err = s.ReadTimeSeries(hecdss.MustParsePathname("/RIVER/GAUGE/STAGE//1Hour/OBS/"), hecdss.ReadFlags{})
	fmt.Println(hecdss.KindOf(err), hecdss.GroupOf(err))

	// Output:
	// 01Jan2020 0100 120 cfs INST-VAL
	// 01Jan2020 0200 135 cfs INST-VAL
	// 01Jan2020 0300 150 cfs INST-VAL
	// RECORD_DOES_NOT_EXIST FILE
}
