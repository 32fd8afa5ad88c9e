package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		if !IsValid(u) {
			t.Errorf("expected %q to be valid", u)
		}
	}
	if IsValid("parsec") {
		t.Error("expected 'parsec' to be invalid")
	}
	if IsValid("") {
		t.Error("expected empty unit to be invalid")
	}
}

func TestConvertAngle(t *testing.T) {
	tests := []struct {
		name   string
		arcsec float64
		target string
		want   float64
	}{
		{"arcsec passthrough", 1.6, Arcsec, 1.6},
		{"arcsec to mas", 0.025, Mas, 25},
		{"arcsec to deg", 3600, Deg, 1},
		{"arcsec to rad", 3600 * 180, Rad, math.Pi},
		{"unknown unit falls back to arcsec", 2.5, "furlong", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertAngle(tt.arcsec, tt.target)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ConvertAngle(%v, %q) = %v, want %v", tt.arcsec, tt.target, got, tt.want)
			}
		})
	}
}
