package phonon

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// ReadForceConstantsHDF5 reads a force_constants.hdf5 file and
// returns the tensor together with the embedded physical unit label,
// or "" when the file carries none. When both p2s and a p2s_map
// dataset are present they must agree.
func ReadForceConstantsHDF5(filename string, p2s []int) (*ForceConstants, string, error) {
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	dset, err := f.OpenDataset("force_constants")
	if err != nil {
		return nil, "", fmt.Errorf("%s: no force_constants dataset: %w", filename, err)
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, "", fmt.Errorf("%s: reading tensor extent: %w", filename, err)
	}
	if len(dims) != 4 || dims[2] != 3 || dims[3] != 3 {
		return nil, "", fmt.Errorf("%s: tensor has shape %v, want (r, c, 3, 3)",
			filename, dims)
	}
	fc := NewForceConstants(int(dims[0]), int(dims[1]))
	if err := dset.Read(&fc.Elems); err != nil {
		return nil, "", fmt.Errorf("%s: reading tensor: %w", filename, err)
	}

	if p2s != nil {
		if pdset, err := f.OpenDataset("p2s_map"); err == nil {
			stored := make([]int64, len(p2s))
			rerr := pdset.Read(&stored)
			pdset.Close()
			if rerr == nil {
				for i := range p2s {
					if int(stored[i]) != p2s[i] {
						return nil, "", fmt.Errorf(
							"%s: p2s_map disagrees with the primitive cell at index %d",
							filename, i)
					}
				}
			}
		}
	}

	unit := ""
	if udset, err := f.OpenDataset("physical_unit"); err == nil {
		var label string
		if err := udset.Read(&label); err == nil {
			unit = label
		}
		udset.Close()
	}
	return fc, unit, nil
}

// ReadForceConstantsFromHDF5 reads a force constants hdf5 file and
// converts the tensor to the native physical unit of calculator when
// the file records a different one. A file without a unit label is
// returned unconverted.
func ReadForceConstantsFromHDF5(filename string, p2s []int, calculator string) (*ForceConstants, error) {
	fc, unit, err := ReadForceConstantsHDF5(filename, p2s)
	if err != nil {
		return nil, err
	}
	if unit == "" {
		return fc, nil
	}
	native, err := CalculatorForceConstantUnit(calculator)
	if err != nil {
		return nil, err
	}
	if unit == native {
		return fc, nil
	}
	factor, err := ForceConstantConversionFactor(unit, calculator)
	if err != nil {
		return nil, err
	}
	fc.Scale(factor)
	return fc, nil
}

// WriteForceConstantsHDF5 writes fc with its primitive map and an
// optional physical unit label
func WriteForceConstantsHDF5(filename string, fc *ForceConstants, p2s []int, unit string) error {
	f, err := hdf5.CreateFile(filename, hdf5.F_ACC_TRUNC)
	if err != nil {
		return err
	}
	defer f.Close()

	dims := []uint{uint(fc.Rows), uint(fc.Cols), 3, 3}
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	dset, err := f.CreateDataset("force_constants", hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return err
	}
	if err := dset.Write(&fc.Elems); err != nil {
		dset.Close()
		return err
	}
	dset.Close()

	if p2s != nil {
		stored := make([]int64, len(p2s))
		for i, v := range p2s {
			stored[i] = int64(v)
		}
		pspace, err := hdf5.CreateSimpleDataspace([]uint{uint(len(p2s))}, nil)
		if err != nil {
			return err
		}
		pdset, err := f.CreateDataset("p2s_map", hdf5.T_NATIVE_INT64, pspace)
		if err != nil {
			return err
		}
		if err := pdset.Write(&stored); err != nil {
			pdset.Close()
			return err
		}
		pdset.Close()
	}

	if unit != "" {
		dtype, err := hdf5.NewDatatypeFromValue(unit)
		if err != nil {
			return err
		}
		uspace, err := hdf5.CreateSimpleDataspace([]uint{1}, nil)
		if err != nil {
			return err
		}
		udset, err := f.CreateDataset("physical_unit", dtype, uspace)
		if err != nil {
			return err
		}
		if err := udset.Write(&unit); err != nil {
			udset.Close()
			return err
		}
		udset.Close()
	}
	return nil
}
