package phonon

import "fmt"

// CODATA 2018
const (
	Bohr    = 0.529177210903  // Angstrom
	Rydberg = 13.605693122994 // eV
	Hartree = 27.211386245988 // eV
)

// calculatorFCUnits is the native force constant physical unit of
// each supported calculator interface
var calculatorFCUnits = map[string]string{
	"vasp":      "eV/angstrom^2",
	"crystal":   "eV/angstrom^2",
	"qe":        "Ry/au^2",
	"abinit":    "eV/angstrom.au",
	"siesta":    "eV/angstrom.au",
	"elk":       "hartree/au^2",
	"cp2k":      "hartree/au^2",
	"turbomole": "hartree/au^2",
	"fleur":     "hartree/au^2",
}

// fcUnitToEVPerA2 converts each known unit to eV/angstrom^2
var fcUnitToEVPerA2 = map[string]float64{
	"eV/angstrom^2":  1.0,
	"eV/angstrom.au": 1.0 / Bohr,
	"Ry/au^2":        Rydberg / (Bohr * Bohr),
	"mRy/au^2":       1e-3 * Rydberg / (Bohr * Bohr),
	"hartree/au^2":   Hartree / (Bohr * Bohr),
}

// CalculatorForceConstantUnit returns the native force constant unit
// of calculator; the empty string means VASP
func CalculatorForceConstantUnit(calculator string) (string, error) {
	if calculator == "" {
		calculator = "vasp"
	}
	unit, ok := calculatorFCUnits[calculator]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCalculator, calculator)
	}
	return unit, nil
}

// ForceConstantConversionFactor returns the factor that converts
// force constants in unit to the native unit of calculator
func ForceConstantConversionFactor(unit, calculator string) (float64, error) {
	from, ok := fcUnitToEVPerA2[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	calcUnit, err := CalculatorForceConstantUnit(calculator)
	if err != nil {
		return 0, err
	}
	return from / fcUnitToEVPerA2[calcUnit], nil
}
