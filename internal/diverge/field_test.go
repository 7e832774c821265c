package diverge

import "testing"

func TestField_SetAt(t *testing.T) {
	f := NewField(8)

	rec := [4]float32{1, 2, 3, 4}
	f.Set(3, 5, rec)

	if got := f.At(3, 5); got != rec {
		t.Errorf("At(3,5) = %v, want %v", got, rec)
	}
	if got := f.At(5, 3); got == rec {
		t.Error("transposed pixel should be untouched")
	}
	if got := f.Value(3, 5, 2); got != 3 {
		t.Errorf("Value channel 2 = %v, want 3", got)
	}
}

func TestField_Clone(t *testing.T) {
	f := NewField(4)
	f.Set(1, 1, [4]float32{9, 9, 9, 9})

	c := f.Clone()
	c.Set(1, 1, [4]float32{0, 0, 0, 0})

	if f.At(1, 1)[0] != 9 {
		t.Error("clone shares backing storage")
	}
}

func TestParseView(t *testing.T) {
	for _, v := range Views() {
		got, err := ParseView(v.String())
		if err != nil {
			t.Fatalf("ParseView(%q): %v", v.String(), err)
		}
		if got != v {
			t.Errorf("ParseView(%q) = %v, want %v", v.String(), got, v)
		}
	}
	if _, err := ParseView("spectral"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestParseOffsetMode(t *testing.T) {
	if m, err := ParseOffsetMode("fixed"); err != nil || m != OffsetFixed {
		t.Errorf("ParseOffsetMode(fixed) = %v, %v", m, err)
	}
	if m, err := ParseOffsetMode("gaussian"); err != nil || m != OffsetGaussian {
		t.Errorf("ParseOffsetMode(gaussian) = %v, %v", m, err)
	}
	if _, err := ParseOffsetMode("uniform"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPingPong(t *testing.T) {
	p := NewPingPong([]int{1}, []int{2})

	if p.Front()[0] != 1 || p.Back()[0] != 2 {
		t.Fatalf("initial orientation wrong: front %v back %v", p.Front(), p.Back())
	}

	p.Back()[0] = 20
	p.Swap()
	if p.Front()[0] != 20 || p.Back()[0] != 1 {
		t.Errorf("after swap: front %v back %v", p.Front(), p.Back())
	}

	p.Swap()
	if p.Front()[0] != 1 {
		t.Error("double swap should restore orientation")
	}
}
