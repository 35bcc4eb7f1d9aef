package phonon

import (
	"math"
	"path/filepath"
	"testing"
)

func naPhonon(t *testing.T) *Phonon {
	t.Helper()
	smat := [3][3]int{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	ph, err := NewPhonon(naCell(t), smat, PrimitiveMatrix{}, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	return ph
}

func TestFullCompactRoundTrip(t *testing.T) {
	ph := naPhonon(t)
	n := ph.Supercell.NumAtoms()
	full := NewForceConstants(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					full.Set(i, j, a, b,
						float64(1000*i+100*j+10*a+b))
				}
			}
		}
	}
	compact, err := FullToCompact(full, ph.Primitive)
	if err != nil {
		t.Fatal(err)
	}
	if !compact.IsCompact() || compact.Rows != 1 {
		t.Fatalf("got %dx%d, wanted 1x%d", compact.Rows, compact.Cols, n)
	}
	back, err := CompactToFull(compact, ph.Primitive)
	if err != nil {
		t.Fatal(err)
	}
	for _, rep := range ph.Primitive.P2S {
		for j := 0; j < n; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					if got, want := back.At(rep, j, a, b), full.At(rep, j, a, b); got != want {
						t.Fatalf("row %d: got %f at (%d,%d,%d), wanted %f",
							rep, got, j, a, b, want)
					}
				}
			}
		}
	}
}

func TestParseForceConstants(t *testing.T) {
	fc, err := ParseForceConstants("testfiles/FORCE_CONSTANTS", []int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if fc.IsCompact() {
		t.Fatal("a 2x2 tensor is not compact")
	}
	if got := fc.At(0, 0, 0, 0); got != 10.0 {
		t.Errorf("got %f, wanted 10.0", got)
	}
	if got := fc.At(0, 1, 2, 2); got != -10.0 {
		t.Errorf("got %f, wanted -10.0", got)
	}
}

func TestWriteParseForceConstants(t *testing.T) {
	ph := naPhonon(t)
	n := ph.Supercell.NumAtoms()
	compact := NewForceConstants(ph.Primitive.NumAtoms(), n)
	for j := 0; j < n; j++ {
		for a := 0; a < 3; a++ {
			compact.Set(0, j, a, a, float64(j)+0.5)
		}
	}
	filename := filepath.Join(t.TempDir(), "FORCE_CONSTANTS")
	if err := WriteForceConstants(filename, compact, ph.Primitive.P2S); err != nil {
		t.Fatal(err)
	}
	got, err := ParseForceConstants(filename, ph.Primitive.P2S)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows != compact.Rows || got.Cols != compact.Cols {
		t.Fatalf("got %dx%d, wanted %dx%d",
			got.Rows, got.Cols, compact.Rows, compact.Cols)
	}
	for i := range got.Elems {
		if math.Abs(got.Elems[i]-compact.Elems[i]) > 1e-12 {
			t.Fatalf("element %d: got %f, wanted %f",
				i, got.Elems[i], compact.Elems[i])
		}
	}
}
