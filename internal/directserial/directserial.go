// Package directserial implements the zero-copy, callback-driven
// serialisation channel used to move signing keys between locked memory
// and a byte stream without ever materialising the secret on the heap.
//
// A PushFunc is invoked one or more times by the push direction
// (serialising); the total of all lengths pushed equals the declared size
// of the value. A PullFunc is invoked one or more times by the pull
// direction (deserialising) to fill buffers in the same order the push
// direction would produce them.
package directserial

import (
	"errors"
	"fmt"

	"github.com/FractionEstate/cardano-base-rust-sub001/internal/memlock"
)

// PushFunc receives one contiguous chunk of a value being serialised.
type PushFunc func(p []byte) error

// PullFunc fills buf with the next contiguous chunk of a value being
// deserialised. It must fill buf completely or return an error.
type PullFunc func(buf []byte) error

// IOError wraps a failure returned by a push or pull callback.
type IOError struct {
	Details error
}

func (e *IOError) Error() string { return fmt.Sprintf("directserial: i/o failure: %v", e.Details) }
func (e *IOError) Unwrap() error { return e.Details }

// SizeCheckError reports that a declared size disagreed with the actual
// number of bytes produced or required.
type SizeCheckError struct {
	Expected int
	Actual   int
}

func (e *SizeCheckError) Error() string {
	return fmt.Sprintf("directserial: size check failed: expected %d, got %d", e.Expected, e.Actual)
}

// ErrNilCallback is returned when a nil push or pull function is supplied.
var ErrNilCallback = errors.New("directserial: nil callback")

// Push invokes push with src in a single call, wrapping any failure as an
// IOError.
func Push(push PushFunc, src []byte) error {
	if push == nil {
		return ErrNilCallback
	}
	if err := push(src); err != nil {
		return &IOError{Details: err}
	}
	return nil
}

// Pull fills dst by invoking pull once, wrapping any failure as an
// IOError. On failure dst is zeroed before the error is returned, so a
// partially-filled secret buffer never leaks on an error path.
func Pull(pull PullFunc, dst []byte) error {
	if pull == nil {
		return ErrNilCallback
	}
	if err := pull(dst); err != nil {
		for i := range dst {
			dst[i] = 0
		}
		return &IOError{Details: err}
	}
	return nil
}

// CheckSize returns a SizeCheckError if actual != expected, else nil.
func CheckSize(expected, actual int) error {
	if expected != actual {
		return &SizeCheckError{Expected: expected, Actual: actual}
	}
	return nil
}

// Serialisable is implemented by types with a direct-serialise push path.
// DirectSize reports the exact number of bytes DirectSerialise will push.
type Serialisable interface {
	DirectSize() int
	DirectSerialise(push PushFunc) error
}

// PullPinned allocates a memlock.PinnedBuffer of exactly n bytes and fills
// it by invoking pull once, so that a secret staged mid-deserialise is
// page-locked the same way its eventual storage will be, rather than
// sitting unpinned in a stack array for the duration of the pull. Callers
// must copy the buffer's contents into final storage and then Drop it.
func PullPinned(pull PullFunc, n int) (*memlock.PinnedBuffer, error) {
	buf, err := memlock.NewPinnedBuffer(n)
	if err != nil {
		return nil, err
	}
	if err := buf.WithPointer(func(dst []byte) error {
		return Pull(pull, dst)
	}); err != nil {
		buf.Drop()
		return nil, err
	}
	return buf, nil
}

// PushPinned copies src into a freshly allocated memlock.PinnedBuffer and
// pushes it through push, so the staged copy is page-locked for the
// duration of the push instead of sitting in a swappable stack array. The
// buffer is zeroed and released before PushPinned returns.
func PushPinned(push PushFunc, src []byte) error {
	buf, err := memlock.NewPinnedBuffer(len(src))
	if err != nil {
		return err
	}
	defer buf.Drop()
	return buf.WithPointer(func(dst []byte) error {
		copy(dst, src)
		return Push(push, dst)
	})
}
