package tutor_test

import (
	"math"
	"testing"

	"github.com/kinelab/biomech-tutor/internal/tutor"
)

func TestOptionCorrect(t *testing.T) {
	cases := []struct {
		original, correct int
		want              bool
	}{
		{2, 2, true},
		{1, 2, false},
		{4, 4, true},
		{1, 0, false}, // row without a correct option matches nothing
		{0, 0, false},
	}
	for _, tc := range cases {
		if got := tutor.OptionCorrect(tc.original, tc.correct); got != tc.want {
			t.Errorf("OptionCorrect(%d, %d) = %v, want %v", tc.original, tc.correct, got, tc.want)
		}
	}
}

func TestNumericInRange(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		name            string
		value, min, max float64
		want            bool
	}{
		{"inside", 10, 9.5, 10.5, true},
		{"at min", 9.5, 9.5, 10.5, true},
		{"at max", 10.5, 9.5, 10.5, true},
		{"below", 9.49, 9.5, 10.5, false},
		{"above", 10.51, 9.5, 10.5, false},
		{"negative range", -3, -5, -1, true},
		{"nan value", nan, 9.5, 10.5, false},
		{"nan min", 10, nan, 10.5, false},
		{"nan max", 10, 9.5, nan, false},
		{"inverted range never passes", 10, 11, 9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tutor.NumericInRange(tc.value, tc.min, tc.max); got != tc.want {
				t.Errorf("NumericInRange(%v, %v, %v) = %v, want %v", tc.value, tc.min, tc.max, got, tc.want)
			}
		})
	}
}

func TestUnitsMatch(t *testing.T) {
	cases := []struct {
		selected, expected string
		want               bool
	}{
		{"m/s", "m/s", true},
		{"m/s^2", "m/s", false},
		{"M/S", "m/s", false}, // case-sensitive
		{tutor.UnitsSentinel, "m/s", false},
		{tutor.UnitsSentinel, tutor.UnitsSentinel, false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := tutor.UnitsMatch(tc.selected, tc.expected); got != tc.want {
			t.Errorf("UnitsMatch(%q, %q) = %v, want %v", tc.selected, tc.expected, got, tc.want)
		}
	}
}
