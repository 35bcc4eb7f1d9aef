/*
Gophonon loader
---------------
This package loads crystal structures and force constants for phonon
calculations from files and in-memory objects, resolving the
precedence among explicit arguments, session data, and the
conventional filenames BORN, FORCE_CONSTANTS, force_constants.hdf5,
and FORCE_SETS found in the working directory.
*/
package phonon

import (
	"errors"
	"fmt"
	"strings"
)

// LoadSettings collects the inputs of a load: at most one structure
// source is honored, in the order unit cell filename, supercell
// filename, unit cell object, supercell object. A zero supercell
// matrix means the identity; a zero primitive matrix picks the
// primitive cell automatically. LogLevel 0 is silent.
type LoadSettings struct {
	SupercellMatrix   [3][3]int
	PrimitiveMatrix   PrimitiveMatrix
	Unitcell          *Cell
	Supercell         *Cell
	UnitcellFilename  string
	SupercellFilename string
	Calculator        string
	Symprec           float64
	LogLevel          int

	NACParams    *NACParams
	BornFilename string
	IsNAC        bool
	NACFactor    float64
}

// GetCellSettings resolves the crystal structure source and returns
// the winning cell, the effective supercell matrix, and the
// canonicalized primitive matrix. A supercell source forces the
// supercell matrix to the identity. With no source at all the error
// is ErrCellNotSpecified.
func GetCellSettings(s LoadSettings) (*Cell, [3][3]int, PrimitiveMatrix, error) {
	smat := s.SupercellMatrix
	if smat == ([3][3]int{}) {
		smat = identityIntMat()
	}
	pmat, err := s.PrimitiveMatrix.Canonicalize()
	if err != nil {
		return nil, smat, pmat, err
	}

	var cell *Cell
	switch {
	case s.UnitcellFilename != "":
		c, src, err := readCrystalStructure(s.UnitcellFilename, s.Calculator)
		if err != nil {
			return nil, smat, pmat, err
		}
		cell = c
		if s.LogLevel > 0 {
			fmt.Printf("Unit cell structure was read from %q.\n", src)
		}
	case s.SupercellFilename != "":
		c, src, err := readCrystalStructure(s.SupercellFilename, s.Calculator)
		if err != nil {
			return nil, smat, pmat, err
		}
		cell = c
		smat = identityIntMat()
		if s.LogLevel > 0 {
			fmt.Printf("Supercell structure was read from %q.\n", src)
		}
	case s.Unitcell != nil:
		cell = s.Unitcell
	case s.Supercell != nil:
		cell = s.Supercell
		smat = identityIntMat()
	default:
		return nil, smat, pmat, ErrCellNotSpecified
	}
	return cell, smat, pmat, nil
}

// GetNACParams resolves the non-analytical correction parameters: an
// explicit BORN filename wins over in-memory parameters, which win
// over a file literally named BORN in the working directory when NAC
// is enabled. Nothing found means nil. A resolved set without a
// conversion factor gets nacFactor filled in.
func GetNACParams(prim *Primitive, nacParams *NACParams, bornFilename string, isNAC bool, nacFactor float64, logLevel int) (*NACParams, error) {
	var nac *NACParams
	switch {
	case bornFilename != "":
		n, err := ParseBORN(prim, bornFilename)
		if err != nil {
			return nil, err
		}
		nac = n
		if logLevel > 0 {
			fmt.Printf("NAC params were read from %q.\n", bornFilename)
		}
	case nacParams != nil:
		nac = nacParams
	case isNAC && fileExists("BORN"):
		n, err := ParseBORN(prim, "BORN")
		if err != nil {
			return nil, err
		}
		nac = n
		if logLevel > 0 {
			fmt.Printf("NAC params were read from %q.\n", "BORN")
		}
	}
	if nac != nil && !nac.HasFactor() {
		nac.Factor = &nacFactor
	}
	return nac, nil
}

// ForceDataSettings collects the force data inputs of a load. Dataset
// and ForceConstants are session data seeded onto the phonon object
// before any file is consulted; the filenames are explicit sources
// taking precedence over the conventional files on disk.
type ForceDataSettings struct {
	Dataset                *Dataset
	ForceConstants         *ForceConstants
	ForceConstantsFilename string
	ForceSetsFilename      string
	FCCalculator           string
	FCCalculatorOptions    string
	ProduceFC              bool
	SymmetrizeFC           bool
	CompactFC              bool
	UsePolyMLP             bool
	LogLevel               int
}

// SetDatasetAndForceConstants resolves the displacement-force dataset
// and force constants for phonon. Resolution order: explicit force
// constants file, explicit force sets file, then, only when the
// object has neither forces nor force constants, the conventional
// files FORCE_CONSTANTS, force_constants.hdf5, and FORCE_SETS. Force
// constants win over datasets; a dataset found on disk overwrites a
// previously attached one.
func SetDatasetAndForceConstants(phonon *Phonon, s ForceDataSettings) error {
	natom := phonon.Supercell.NumAtoms()

	// session data first
	if s.Dataset != nil {
		if s.UsePolyMLP {
			phonon.MLPDataset = s.Dataset
		} else {
			phonon.Dataset = s.Dataset
		}
	}
	if s.ForceConstants != nil {
		phonon.ForceConstants = s.ForceConstants
	}

	var (
		fc       *ForceConstants
		dataset  *Dataset
		fcName   string
		setsName string
		err      error
	)
	switch {
	case s.ForceConstantsFilename != "":
		fc, err = readForceConstantsFile(phonon, s.ForceConstantsFilename,
			s.CompactFC, s.LogLevel)
		if err != nil {
			return err
		}
		fcName = s.ForceConstantsFilename
	case s.ForceSetsFilename != "":
		dataset, err = ParseForceSets(natom, s.ForceSetsFilename)
		if err != nil {
			return err
		}
		setsName = s.ForceSetsFilename
	case !phonon.Forces() && phonon.ForceConstants == nil:
		switch {
		case fileExists("FORCE_CONSTANTS"):
			fc, err = readForceConstantsFile(phonon, "FORCE_CONSTANTS",
				s.CompactFC, s.LogLevel)
			if err != nil {
				return err
			}
			fcName = "FORCE_CONSTANTS"
		case fileExists("force_constants.hdf5"):
			fc, err = readForceConstantsFile(phonon, "force_constants.hdf5",
				s.CompactFC, s.LogLevel)
			if err != nil {
				return err
			}
			fcName = "force_constants.hdf5"
		case fileExists("FORCE_SETS"):
			dataset, err = ParseForceSets(natom, "FORCE_SETS")
			if err != nil {
				return err
			}
			setsName = "FORCE_SETS"
		}
	}

	if fc != nil {
		phonon.ForceConstants = fc
		if s.LogLevel > 0 {
			fmt.Printf("Force constants were read from %q.\n", fcName)
		}
	}

	if phonon.ForceConstants != nil {
		return nil
	}
	if dataset != nil {
		overwritten := phonon.Dataset != nil && phonon.Dataset.HasDisplacements()
		phonon.Dataset = dataset
		if s.LogLevel > 0 {
			fmt.Printf("Force sets were read from %q.\n", setsName)
			if overwritten {
				fmt.Printf("Displacements were overwritten by %q.\n", setsName)
			}
		}
	}
	if s.ProduceFC {
		return produceForceConstants(phonon, s)
	}
	return nil
}

func produceForceConstants(phonon *Phonon, s ForceDataSettings) error {
	err := phonon.ProduceForceConstants(!s.CompactFC,
		s.FCCalculator, s.FCCalculatorOptions)
	if err != nil {
		if errors.Is(err, ErrForcesetsNotFound) {
			if s.LogLevel > 0 {
				fmt.Println("Force constants not produced due to force set not found.")
			}
			return nil
		}
		return err
	}
	if s.SymmetrizeFC {
		if err := phonon.SymmetrizeForceConstants(s.LogLevel > 0); err != nil {
			return err
		}
		if s.LogLevel > 0 {
			fmt.Println("Force constants were symmetrized.")
		}
	}
	return nil
}

// readForceConstantsFile reads a force constants file, routing .hdf5
// names through the binary reader with unit conversion, and converts
// the tensor layout to the one asked for.
func readForceConstantsFile(phonon *Phonon, filename string, compactFC bool, logLevel int) (*ForceConstants, error) {
	p2s := phonon.Primitive.P2S
	var (
		fc  *ForceConstants
		err error
	)
	if strings.HasSuffix(filename, ".hdf5") {
		fc, err = ReadForceConstantsFromHDF5(filename, p2s, phonon.Calculator)
	} else {
		fc, err = ParseForceConstants(filename, p2s)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case compactFC && !fc.IsCompact():
		return FullToCompact(fc, phonon.Primitive)
	case !compactFC && fc.IsCompact():
		return CompactToFull(fc, phonon.Primitive)
	}
	return fc, nil
}

// Load resolves the crystal structure, builds the phonon object, and
// resolves the NAC parameters and force data onto it in one call.
func Load(s LoadSettings, f ForceDataSettings) (*Phonon, error) {
	cell, smat, pmat, err := GetCellSettings(s)
	if err != nil {
		return nil, err
	}
	phonon, err := NewPhonon(cell, smat, pmat, s.Calculator, s.Symprec)
	if err != nil {
		return nil, err
	}
	nac, err := GetNACParams(phonon.Primitive, s.NACParams, s.BornFilename,
		s.IsNAC, s.NACFactor, s.LogLevel)
	if err != nil {
		return nil, err
	}
	phonon.NACParams = nac
	if err := SetDatasetAndForceConstants(phonon, f); err != nil {
		return nil, err
	}
	return phonon, nil
}
