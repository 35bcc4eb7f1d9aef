package phonon

import (
	"errors"
	"fmt"
)

// Errors used throughout
var (
	ErrCellNotSpecified      = errors.New("cell has to be specified")
	ErrForcesetsNotFound     = errors.New("forces and displacements not found in dataset")
	ErrUnsupportedCalculator = errors.New("unsupported calculator interface")
	ErrUnknownUnit           = errors.New("unknown force constants unit")
)

// StructureFormatError reports a crystal structure file that exists
// but could not be parsed with the given calculator interface. A
// missing file is never wrapped in this type so callers can tell the
// two apart with errors.Is(err, fs.ErrNotExist).
type StructureFormatError struct {
	Filename   string
	Calculator string
	Err        error
}

func (e *StructureFormatError) Error() string {
	calc := e.Calculator
	if calc == "" {
		calc = "vasp (default)"
	}
	return fmt.Sprintf(`============================ gophonon ============================
  Reading crystal structure file %q failed.
  The file was read with the %s interface.
  Maybe an explicit calculator hint is expected, e.g.
  ReadCrystalStructure(%q, "<calculator name>")?
============================ gophonon ============================
%v`, e.Filename, calc, e.Filename, e.Err)
}

func (e *StructureFormatError) Unwrap() error { return e.Err }
