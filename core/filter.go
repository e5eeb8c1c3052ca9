package core

// MaxFilterWindow is the capacity of the RPM filter buffer.
const MaxFilterWindow = 20

// RPMFilter is a moving average over the last window raw RPM samples,
// written circularly. All populated slots weigh equally; there is no
// decay.
type RPMFilter struct {
	buf   [MaxFilterWindow]float64
	size  int
	idx   int
	count int
}

// NewRPMFilter creates a filter with the given window. An out-of-range
// window falls back to 1 (passthrough); callers that care validate
// through SetWindow first.
func NewRPMFilter(window int) *RPMFilter {
	f := &RPMFilter{size: 1}
	if window >= 1 && window <= MaxFilterWindow {
		f.size = window
	}
	return f
}

// Apply feeds one raw sample and returns the current average over the
// populated slots. A window of one is a passthrough.
func (f *RPMFilter) Apply(raw float64) float64 {
	if f.size <= 1 {
		return raw
	}

	f.buf[f.idx] = raw
	// Only a write at the frontier populates a new slot; writes behind
	// it overwrite existing samples (the populated region is always the
	// prefix buf[0:count]).
	if f.idx == f.count && f.count < f.size {
		f.count++
	}
	f.idx = (f.idx + 1) % f.size

	sum := 0.0
	for i := 0; i < f.count; i++ {
		sum += f.buf[i]
	}
	return sum / float64(f.count)
}

// SetWindow changes the averaging span. Buffered samples are kept, not
// rescaled; shrinking the window narrows the averaged span right away
// and old samples beyond it fall out as the circular index overwrites
// them.
func (f *RPMFilter) SetWindow(window int) error {
	if window < 1 || window > MaxFilterWindow {
		return ErrInvalidParameter
	}
	f.size = window
	if f.count > window {
		f.count = window
	}
	if f.idx >= window {
		f.idx = 0
	}
	return nil
}

// Window returns the current averaging span.
func (f *RPMFilter) Window() int {
	return f.size
}

// Reset discards all buffered samples.
func (f *RPMFilter) Reset() {
	f.idx = 0
	f.count = 0
	for i := range f.buf {
		f.buf[i] = 0
	}
}
