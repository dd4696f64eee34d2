// ABOUTME: Weight value type with kg/lbs conversion and formatting.
// ABOUTME: Stored magnitude keeps the unit it was logged in; conversion is lossless.
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WeightUnit is a supported weight denomination.
type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

// KgToLbs is the fixed conversion factor between the two supported units.
const KgToLbs = 2.205

// Weight is a physical weight: a magnitude plus the unit it was stored in.
type Weight struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

// NewWeight builds a Weight after validating the magnitude and unit.
func NewWeight(value float64, unit WeightUnit) (Weight, error) {
	if !IsValidWeight(value) {
		return Weight{}, fmt.Errorf("invalid weight value %v", value)
	}
	if unit != UnitKg && unit != UnitLbs {
		return Weight{}, fmt.Errorf("unsupported weight unit %q", unit)
	}
	return Weight{Value: value, Unit: unit}, nil
}

// IsValidWeight reports whether v is a usable magnitude: finite, not NaN.
func IsValidWeight(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ConvertWeight converts a magnitude between the supported units. The
// identity path returns the input untouched so no floating-point drift is
// introduced when from == to.
func ConvertWeight(value float64, from, to WeightUnit) (float64, error) {
	if !IsValidWeight(value) {
		return 0, fmt.Errorf("invalid weight value %v", value)
	}
	if to != UnitKg && to != UnitLbs {
		return 0, fmt.Errorf("unsupported weight unit %q", to)
	}
	if from == to {
		return value, nil
	}
	if from == UnitKg {
		return value * KgToLbs, nil
	}
	return value / KgToLbs, nil
}

// In returns the magnitude converted to the target unit. The receiver is
// not modified.
func (w Weight) In(unit WeightUnit) (float64, error) {
	return ConvertWeight(w.Value, w.Unit, unit)
}

// Format renders the converted magnitude with the requested number of
// decimal places. With trailingZero=false, trailing zeros after the
// decimal point are stripped: 75.00 -> "75", 75.50 -> "75.5".
func (w Weight) Format(unit WeightUnit, decimals int, trailingZero bool) (string, error) {
	v, err := w.In(unit)
	if err != nil {
		return "", err
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if !trailingZero && strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s, nil
}
