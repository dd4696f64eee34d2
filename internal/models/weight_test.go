// ABOUTME: Tests for weight conversion and formatting.
// ABOUTME: Covers unit conversion, identity fast path, validation, rendering.
package models

import (
	"math"
	"testing"
)

func TestConvertWeightKgToLbs(t *testing.T) {
	got, err := ConvertWeight(100, UnitKg, UnitLbs)
	if err != nil {
		t.Fatalf("ConvertWeight failed: %v", err)
	}
	if got != 220.5 {
		t.Errorf("ConvertWeight(100, kg, lbs) = %v, want 220.5", got)
	}
}

func TestConvertWeightLbsToKg(t *testing.T) {
	got, err := ConvertWeight(220.5, UnitLbs, UnitKg)
	if err != nil {
		t.Fatalf("ConvertWeight failed: %v", err)
	}
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("ConvertWeight(220.5, lbs, kg) = %v, want 100", got)
	}
}

func TestConvertWeightIdentity(t *testing.T) {
	// Same-unit conversion must return the input untouched, with no
	// round-trip through the factor.
	got, err := ConvertWeight(82.3, UnitKg, UnitKg)
	if err != nil {
		t.Fatalf("ConvertWeight failed: %v", err)
	}
	if got != 82.3 {
		t.Errorf("identity conversion changed the value: %v", got)
	}
}

func TestConvertWeightInvalidValue(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := ConvertWeight(v, UnitKg, UnitLbs); err == nil {
			t.Errorf("ConvertWeight(%v) should fail", v)
		}
	}
}

func TestConvertWeightInvalidUnit(t *testing.T) {
	if _, err := ConvertWeight(100, UnitKg, WeightUnit("stone")); err == nil {
		t.Error("expected error for unsupported unit")
	}
}

func TestNewWeightValidation(t *testing.T) {
	if _, err := NewWeight(80, UnitKg); err != nil {
		t.Errorf("NewWeight(80, kg) failed: %v", err)
	}
	if _, err := NewWeight(math.NaN(), UnitKg); err == nil {
		t.Error("NewWeight(NaN) should fail")
	}
	if _, err := NewWeight(80, WeightUnit("stone")); err == nil {
		t.Error("NewWeight with bad unit should fail")
	}
}

func TestWeightIn(t *testing.T) {
	w := Weight{Value: 100, Unit: UnitKg}
	got, err := w.In(UnitLbs)
	if err != nil {
		t.Fatalf("In failed: %v", err)
	}
	if got != 220.5 {
		t.Errorf("In(lbs) = %v, want 220.5", got)
	}
	// Receiver stays in its stored unit.
	if w.Value != 100 || w.Unit != UnitKg {
		t.Error("In mutated the receiver")
	}
}

func TestWeightFormat(t *testing.T) {
	tests := []struct {
		value        float64
		unit         WeightUnit
		target       WeightUnit
		decimals     int
		trailingZero bool
		want         string
	}{
		{75, UnitKg, UnitKg, 2, false, "75"},
		{75.5, UnitKg, UnitKg, 2, false, "75.5"},
		{75, UnitKg, UnitKg, 2, true, "75.00"},
		{100, UnitKg, UnitLbs, 1, false, "220.5"},
		{82.25, UnitKg, UnitKg, 1, false, "82.3"},
	}
	for _, tt := range tests {
		w := Weight{Value: tt.value, Unit: tt.unit}
		got, err := w.Format(tt.target, tt.decimals, tt.trailingZero)
		if err != nil {
			t.Errorf("Format(%v %s -> %s) failed: %v", tt.value, tt.unit, tt.target, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Format(%v %s -> %s, %d, %v) = %q, want %q",
				tt.value, tt.unit, tt.target, tt.decimals, tt.trailingZero, got, tt.want)
		}
	}
}
