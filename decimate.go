package pointpipe

import "fmt"

// DecimationFilter keeps every step-th point of the upstream stream,
// counting by global upstream index so the result is independent of the
// buffer capacities used to pull it. Sequential iteration only.
type DecimationFilter struct {
	filterCore
	step uint64
}

// NewDecimationFilter builds a decimation filter with the given step. A step
// of 1 passes everything through.
func NewDecimationFilter(upstream Stage, step uint64) *DecimationFilter {
	f := &DecimationFilter{step: step}
	f.name = "filters.decimation"
	f.description = "Decimation Filter"
	f.upstream = upstream
	return f
}

// Initialize inherits upstream metadata. Decimation imposes no schema
// requirements.
func (f *DecimationFilter) Initialize() error {
	if err := f.initBase(); err != nil {
		return err
	}
	if f.step == 0 {
		return fmt.Errorf("%s: step must be at least 1", f.name)
	}
	f.initialized = true
	return nil
}

// SupportsIterator reports sequential-only support.
func (f *DecimationFilter) SupportsIterator(kind IteratorKind) bool {
	return kind == IteratorSequential
}

// SequentialIterator returns an iterator that keeps pulling from upstream
// until the caller's buffer is full or the upstream stream ends.
func (f *DecimationFilter) SequentialIterator() (SequentialIterator, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	upstream, err := f.upstream.SequentialIterator()
	if err != nil {
		return nil, err
	}
	return &decimationIterator{filter: f, upstream: upstream}, nil
}

// RandomIterator is not supported by this filter.
func (f *DecimationFilter) RandomIterator() (RandomIterator, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", f.name, ErrUnsupportedIterator)
}

type decimationIterator struct {
	filter   *DecimationFilter
	upstream SequentialIterator
	position uint64 // global upstream index of the next point
	done     bool
}

func (it *decimationIterator) Read(buf *Buffer) (int, error) {
	out := 0
	for out < buf.Capacity() && !it.done {
		scratch := NewBuffer(buf.Layout(), buf.Capacity()-out)
		n, err := it.upstream.Read(scratch)
		if err != nil {
			return 0, err
		}
		if n < scratch.Capacity() {
			it.done = true
		}
		for i := 0; i < n; i++ {
			if it.position%it.filter.step == 0 {
				buf.CopyPoint(out, scratch, i)
				out++
			}
			it.position++
		}
	}
	buf.SetCount(out)
	return out, nil
}
