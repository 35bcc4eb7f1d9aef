package phonon

import (
	"testing"
)

func csclPhonon(t *testing.T) *Phonon {
	t.Helper()
	ph, err := NewPhonon(csclCell(t), identityIntMat(), PrimitiveMatrix{}, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	return ph
}

func TestParseBORN(t *testing.T) {
	ph := csclPhonon(t)
	nac, err := ParseBORN(ph.Primitive, "testfiles/BORN_test")
	if err != nil {
		t.Fatal(err)
	}
	if !nac.HasFactor() || *nac.Factor != 14.4 {
		t.Errorf("got factor %v, wanted 14.4", nac.Factor)
	}
	if got := nac.Dielectric[2][2]; got != 2.0 {
		t.Errorf("got dielectric element %f, wanted 2.0", got)
	}
	if len(nac.Born) != 2 {
		t.Fatalf("got %d Born tensors, wanted 2", len(nac.Born))
	}
	if got := nac.Born[1][0][0]; got != -1.08 {
		t.Errorf("got Born element %f, wanted -1.08", got)
	}
}

func TestParseBORNDefaultFactor(t *testing.T) {
	ph := csclPhonon(t)
	nac, err := ParseBORN(ph.Primitive, "testfiles/BORN")
	if err != nil {
		t.Fatal(err)
	}
	if nac.HasFactor() {
		t.Errorf("got factor %f, wanted unset", *nac.Factor)
	}
	if nac.Born[0][1][1] != 1.08 {
		t.Errorf("got Born element %f, wanted 1.08", nac.Born[0][1][1])
	}
}

func TestParseBORNWrongAtomCount(t *testing.T) {
	na, err := NewPhonon(naCell(t), identityIntMat(), PrimitiveMatrix{}, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	// the file carries two Born tensors, the primitive has one atom
	if _, err := ParseBORN(na.Primitive, "testfiles/BORN"); err == nil {
		t.Error("expected an atom count mismatch error")
	}
}
