package quantum

import (
	"errors"
	"testing"
)

func TestPulseExtractOrder(t *testing.T) {
	a, b, c := mustQubit(t, Zero), mustQubit(t, One), mustQubit(t, Plus)
	p, err := NewPulse(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Insert(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Size() != 3 {
		t.Fatalf("p.Size() == %d, want 3", p.Size())
	}
	for i, want := range []*Qubit{c, b, a} {
		got, err := p.Extract()
		if err != nil {
			t.Fatalf("extract %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("extract %d returned %v, want %v", i, got.State(), want.State())
		}
	}
	if _, err := p.Extract(); !errors.Is(err, ErrEmptyPulse) {
		t.Errorf("Extract() on empty pulse error == %v, want %v", err, ErrEmptyPulse)
	}
}

func TestPulseAt(t *testing.T) {
	a, b := mustQubit(t, Zero), mustQubit(t, One)
	p, err := NewPulse(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tcs := []struct {
		idx  int
		want *Qubit
		eErr bool
	}{
		{0, a, false},
		{1, b, false},
		{2, nil, true},
		{-1, nil, true},
	}
	for _, tc := range tcs {
		got, err := p.At(tc.idx)
		if tc.eErr {
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("At(%d) error == %v, want %v", tc.idx, err, ErrIndexOutOfRange)
			}
			continue
		}
		if err != nil {
			t.Errorf("At(%d): unexpected error: %v", tc.idx, err)
		}
		if got != tc.want {
			t.Errorf("At(%d) returned the wrong qubit", tc.idx)
		}
	}
	if p.Size() != 2 {
		t.Errorf("At mutated pulse size to %d", p.Size())
	}
}

func TestPulseExclusiveOwnership(t *testing.T) {
	q := mustQubit(t, Plus)
	p1, err := NewPulse(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, _ := NewPulse()
	if err := p2.Insert(q); !errors.Is(err, ErrQubitOwned) {
		t.Fatalf("inserting owned qubit error == %v, want %v", err, ErrQubitOwned)
	}
	if _, err := NewPulse(q); !errors.Is(err, ErrQubitOwned) {
		t.Errorf("NewPulse with owned qubit error == %v, want %v", err, ErrQubitOwned)
	}
	moved, err := p1.Extract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p2.Insert(moved); err != nil {
		t.Errorf("inserting extracted qubit: %v", err)
	}
	if p1.Size() != 0 || p2.Size() != 1 {
		t.Errorf("sizes after move == (%d, %d), want (0, 1)", p1.Size(), p2.Size())
	}
}
