package memlock

// PinnedBuffer is a locked region specialised for use as the source or
// destination of a raw-pointer callback, such as the push/pull callbacks of
// the direct-serialise channel. Go has no compile-time array-length
// generics, so the fixed length lives in a runtime field rather than a type
// parameter; callers that need a specific size construct one with
// NewPinnedBuffer(n) and are expected to treat n as fixed for the buffer's
// lifetime.
type PinnedBuffer struct {
	region *Region
}

// NewPinnedBuffer allocates a pinned buffer of exactly n bytes.
func NewPinnedBuffer(n int) (*PinnedBuffer, error) {
	r, err := Allocate(n)
	if err != nil {
		return nil, err
	}
	return &PinnedBuffer{region: r}, nil
}

// Len reports the buffer's fixed length.
func (p *PinnedBuffer) Len() int {
	return p.region.Len()
}

// WithPointer invokes fn with the buffer's backing slice. The slice's
// address is stable for the lifetime of the PinnedBuffer: it is never
// reallocated, so fn may hand the slice (or its base address) to
// pointer-oriented FFI-style code without risk of the buffer moving
// underneath it.
func (p *PinnedBuffer) WithPointer(fn func(buf []byte) error) error {
	return fn(p.region.Bytes())
}

// Zero overwrites the buffer with zero bytes.
func (p *PinnedBuffer) Zero() {
	p.region.Zero()
}

// Drop zeroes and releases the buffer.
func (p *PinnedBuffer) Drop() {
	p.region.Drop()
}
