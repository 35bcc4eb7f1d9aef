package phonon

import (
	"errors"
	"math"
	"testing"
)

func TestForceConstantConversionFactor(t *testing.T) {
	tests := []struct {
		unit       string
		calculator string
		want       float64
	}{
		{"eV/angstrom^2", "", 1},
		{"eV/angstrom^2", "vasp", 1},
		{"Ry/au^2", "vasp", Rydberg / (Bohr * Bohr)},
		{"hartree/au^2", "vasp", Hartree / (Bohr * Bohr)},
		{"eV/angstrom^2", "qe", (Bohr * Bohr) / Rydberg},
		{"Ry/au^2", "qe", 1},
	}
	for _, test := range tests {
		got, err := ForceConstantConversionFactor(test.unit, test.calculator)
		if err != nil {
			t.Fatalf("%s -> %s: %v", test.unit, test.calculator, err)
		}
		if math.Abs(got-test.want) > 1e-10*test.want {
			t.Errorf("%s -> %s: got %f, wanted %f",
				test.unit, test.calculator, got, test.want)
		}
	}
}

func TestForceConstantConversionFactorErrors(t *testing.T) {
	if _, err := ForceConstantConversionFactor("furlongs", "vasp"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("got %v, wanted ErrUnknownUnit", err)
	}
	if _, err := ForceConstantConversionFactor("Ry/au^2", "molpro"); !errors.Is(err, ErrUnsupportedCalculator) {
		t.Errorf("got %v, wanted ErrUnsupportedCalculator", err)
	}
}
