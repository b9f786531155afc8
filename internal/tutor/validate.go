package tutor

import "math"

// OptionCorrect reports whether the option at originalIndex (1..4) is the
// row's correct option. A zero correctOption means the row has none; nothing
// matches it.
func OptionCorrect(originalIndex, correctOption int) bool {
	return correctOption != 0 && originalIndex == correctOption
}

// NumericInRange checks min <= value <= max, inclusive both ends. NaN bounds
// or a NaN value fail validation rather than panic or pass; a missing range
// is a data error, not a user error, and is reported separately.
func NumericInRange(value, min, max float64) bool {
	if math.IsNaN(value) || math.IsNaN(min) || math.IsNaN(max) {
		return false
	}
	return min <= value && value <= max
}

// UnitsMatch is a case-sensitive exact comparison. The "no selection"
// sentinel never matches a real unit.
func UnitsMatch(selected, expected string) bool {
	if selected == UnitsSentinel || expected == "" {
		return false
	}
	return selected == expected
}
