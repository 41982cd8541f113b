package bitmap

import (
	"bytes"
	"testing"

	"golang.org/x/exp/rand"
)

func mustDense(t *testing.T, s string) Dense {
	t.Helper()
	d, err := FromString(s)
	if err != nil {
		t.Fatalf("could not construct bitmap: %v", err)
	}
	return d
}

func TestFromString(t *testing.T) {
	tcs := []struct {
		in    string
		edata []byte
		elen  int
		eErr  bool
	}{
		{"", nil, 0, false},
		{"1010", []byte{0b0101}, 4, false},
		{"00000000 101", []byte{0, 0b101}, 11, false},
		{"10x1", nil, 0, true},
	}
	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			d, err := FromString(tc.in)
			if tc.eErr {
				if err == nil {
					t.Errorf("expected error: got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Size() != tc.elen {
				t.Errorf("got bitmap of len %d, want %d", d.Size(), tc.elen)
			}
			if !bytes.Equal(d.Data(), tc.edata) {
				t.Errorf("FromString(%q) == %08b, want %08b", tc.in, d.Data(), tc.edata)
			}
		})
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{"", "0", "1010", "110010101"} {
		if got := mustDense(t, s).String(); got != s {
			t.Errorf("String() == %q, want %q", got, s)
		}
	}
}

func TestNewDenseClearsTail(t *testing.T) {
	d := NewDense([]byte{0xFF}, 3)
	if CountOnes(d) != 3 {
		t.Errorf("CountOnes(%v) == %d, want 3", d, CountOnes(d))
	}
	if d.String() != "111" {
		t.Errorf("String() == %q, want %q", d.String(), "111")
	}
}

func TestSet(t *testing.T) {
	d := NewDense(nil, 10)
	d.Set(0, true)
	d.Set(9, true)
	d.Set(9, false)
	d.Set(8, true)
	if want := "1000000010"; d.String() != want {
		t.Errorf("d == %s, want %s", d, want)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Set past end did not panic")
		}
	}()
	d.Set(10, true)
}

func TestRandom(t *testing.T) {
	a := Random(rand.New(rand.NewSource(1)), 1001)
	b := Random(rand.New(rand.NewSource(1)), 1001)
	if !Equal(a, b) {
		t.Errorf("same seed produced different bitmaps")
	}
	if a.Size() != 1001 {
		t.Errorf("got bitmap of len %d, want 1001", a.Size())
	}
	if ones := CountOnes(a); ones < 400 || ones > 600 {
		t.Errorf("random bitmap has %d ones out of 1001", ones)
	}
}

func TestOps(t *testing.T) {
	a, b := mustDense(t, "1100 1010 1"), mustDense(t, "1010 0110 1")
	tcs := []struct {
		name string
		got  Dense
		want string
	}{
		{"and", And(a, b), "100000101"},
		{"xor", XOr(a, b), "011011000"},
		{"xnor", XNor(a, b), "100100111"},
		{"not", Not(a), "001101010"},
		{"select", Select(a, b), "10011"},
		{"and short", And(a, mustDense(t, "11")), "11"},
		{"xor short", XOr(mustDense(t, "01"), a), "100010101"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got.String() != tc.want {
				t.Errorf("got %s, want %s", tc.got, tc.want)
			}
		})
	}
}

func TestAgreement(t *testing.T) {
	a := mustDense(t, "1010 1010")
	b := mustDense(t, "1011 1000")
	mask := mustDense(t, "1111 0011")
	agree, total := Agreement(a, b, mask)
	if agree != 4 || total != 6 {
		t.Errorf("Agreement() == (%d, %d), want (4, 6)", agree, total)
	}
}
