// Package memlock provides page-locked, zero-on-drop memory regions for
// holding secret key material. Every signing key in this module is backed
// by a Region so that its bytes never touch swap and are guaranteed
// overwritten before the underlying allocation is released.
package memlock

import (
	"errors"
	"runtime"
)

// ErrLockFailed is returned when the OS refuses to pin the requested pages,
// for example because RLIMIT_MEMLOCK has been exhausted. There is no
// fallback to unpinned memory for secret material.
var ErrLockFailed = errors.New("memlock: failed to pin pages")

// Region owns a contiguous, page-locked byte buffer. The zero value is not
// usable; construct one with Allocate. A Region must not be copied; pass it
// by pointer.
type Region struct {
	buf    []byte
	locked bool
}

// Allocate reserves a locked, zero-initialised region of the given length.
// Zero-length allocations are permitted and return a valid, degenerate
// Region whose Bytes method yields a nil slice.
func Allocate(length int) (*Region, error) {
	if length == 0 {
		return &Region{}, nil
	}

	buf := make([]byte, length)
	if err := lockPages(buf); err != nil {
		return nil, ErrLockFailed
	}

	r := &Region{buf: buf, locked: true}
	runtime.SetFinalizer(r, (*Region).finalize)
	return r, nil
}

// Bytes returns the region's contents. The returned slice is only valid for
// the lifetime of the Region; callers must not retain it past Zero or Drop.
func (r *Region) Bytes() []byte {
	if r == nil {
		return nil
	}
	return r.buf
}

// Len reports the region's length in bytes.
func (r *Region) Len() int {
	if r == nil {
		return 0
	}
	return len(r.buf)
}

// Clone allocates a fresh locked region and copies this region's contents
// into it.
func (r *Region) Clone() (*Region, error) {
	c, err := Allocate(r.Len())
	if err != nil {
		return nil, err
	}
	copy(c.buf, r.buf)
	return c, nil
}

// Zero overwrites every byte of the region with zero. The write is
// structured so the compiler cannot elide it. Zero is idempotent and safe
// to call on an already-zeroed or already-dropped region.
func (r *Region) Zero() {
	if r == nil {
		return
	}
	zeroBytes(r.buf)
}

// Drop zeroes the region, unpins its pages, and releases the backing
// allocation. Drop is idempotent. Callers that need a deterministic release
// point (rather than relying on the garbage collector plus finalizer)
// should call Drop explicitly; Forget on the key types that embed a Region
// does so.
func (r *Region) Drop() {
	if r == nil {
		return
	}
	r.Zero()
	if r.locked {
		unlockPages(r.buf)
		r.locked = false
	}
	r.buf = nil
	runtime.SetFinalizer(r, nil)
}

func (r *Region) finalize() {
	r.Drop()
}

// zeroBytes overwrites b with zero bytes using a loop the compiler cannot
// prove is dead, even when b is about to go out of scope.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
