package core

import (
	"errors"
	"math"
	"os"
	"testing"
)

func TestBandForAge(t *testing.T) {
	cases := []struct {
		age  float64
		want AgeBand
		ok   bool
	}{
		{17, "", false},
		{17.9, "", false},
		{18, Band18to25, true},
		{25, Band18to25, true},
		{25.5, Band26to35, true},
		{26, Band26to35, true},
		{30, Band26to35, true},
		{35, Band26to35, true},
		{36, Band36to45, true},
		{45, Band36to45, true},
		{46, Band46to55, true},
		{55, Band46to55, true},
		{56, Band56to65, true},
		{65, Band56to65, true},
		{66, "", false},
		{math.NaN(), "", false},
	}
	for _, tc := range cases {
		got, ok := BandForAge(tc.age)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("BandForAge(%v) = %q,%v want %q,%v", tc.age, got, ok, tc.want, tc.ok)
		}
	}
}

func TestBandForAgeMatchesBounds(t *testing.T) {
	for age := MinBandedAge; age <= MaxBandedAge; age++ {
		band, ok := BandForAge(float64(age))
		if !ok {
			t.Fatalf("age %d: expected a band", age)
		}
		matches := 0
		for _, b := range AgeBands() {
			lo, hi, err := b.Bounds()
			if err != nil {
				t.Fatalf("bounds %q: %v", b, err)
			}
			if age >= lo && age <= hi {
				matches++
				if b != band {
					t.Fatalf("age %d banded %q but falls in %q", age, band, b)
				}
			}
		}
		if matches != 1 {
			t.Fatalf("age %d falls in %d bands", age, matches)
		}
		again, _ := BandForAge(float64(age))
		if again != band {
			t.Fatalf("age %d: unstable band %q then %q", age, band, again)
		}
	}
}

func TestBoundsRejectsGarbage(t *testing.T) {
	if _, _, err := AgeBand("old").Bounds(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDataUnavailableError(t *testing.T) {
	err := DataUnavailable("x.csv", os.ErrNotExist)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected cause to unwrap")
	}
	var due *DataUnavailableError
	if !errors.As(err, &due) || due.Path != "x.csv" {
		t.Fatalf("expected *DataUnavailableError with path, got %#v", err)
	}
}
