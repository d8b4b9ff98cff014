package memlock

import (
	"bytes"
	"testing"
)

func TestAllocateZeroInitialised(t *testing.T) {
	r, err := Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer r.Drop()

	want := make([]byte, 64)
	if !bytes.Equal(r.Bytes(), want) {
		t.Fatal("freshly allocated region should be zero-initialised")
	}
}

func TestAllocateZeroLength(t *testing.T) {
	r, err := Allocate(0)
	if err != nil {
		t.Fatalf("Allocate(0): %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	r.Drop() // must not panic on a degenerate region
}

func TestDropZeroesBytes(t *testing.T) {
	r, err := Allocate(32)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for i := range r.Bytes() {
		r.Bytes()[i] = 0xAA
	}
	buf := r.Bytes()
	r.Drop()

	want := make([]byte, 32)
	if !bytes.Equal(buf, want) {
		t.Fatal("Drop must overwrite every byte with zero")
	}
}

func TestDropIdempotent(t *testing.T) {
	r, err := Allocate(16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	r.Drop()
	r.Drop() // must not panic or double-free
}

func TestClone(t *testing.T) {
	r, err := Allocate(16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer r.Drop()
	copy(r.Bytes(), []byte("0123456789abcdef"))

	c, err := r.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer c.Drop()

	if !bytes.Equal(r.Bytes(), c.Bytes()) {
		t.Fatal("clone should copy contents")
	}

	c.Bytes()[0] = 'X'
	if r.Bytes()[0] == 'X' {
		t.Fatal("clone must allocate fresh storage, not alias the original")
	}
}
