package pointpipe

import "fmt"

// CropFilter passes through only the points that lie inside a configured
// clip box. Requires X, Y and Z as float64. Sequential iteration only.
type CropFilter struct {
	filterCore
	clip Bounds
}

// NewCropFilter builds a crop filter keeping points inside the clip box.
func NewCropFilter(upstream Stage, clip Bounds) *CropFilter {
	f := &CropFilter{clip: clip}
	f.name = "filters.crop"
	f.description = "Crop Filter"
	f.upstream = upstream
	return f
}

// Initialize inherits upstream metadata, checks impedance and adopts the
// clip box as this stage's bounds.
func (f *CropFilter) Initialize() error {
	if err := f.initBase(); err != nil {
		return err
	}
	if !f.schema.Has(DimXF64) || !f.schema.Has(DimYF64) || !f.schema.Has(DimZF64) {
		return &ImpedanceError{
			Stage:       f.name,
			Requirement: "X, Y and Z dimensions as float64",
		}
	}
	f.bounds = f.clip
	f.initialized = true
	return nil
}

// SupportsIterator reports sequential-only support.
func (f *CropFilter) SupportsIterator(kind IteratorKind) bool {
	return kind == IteratorSequential
}

// SequentialIterator returns an iterator that keeps pulling from upstream
// until the caller's buffer is full or the upstream stream ends, so a short
// read still signals end of stream to the caller.
func (f *CropFilter) SequentialIterator() (SequentialIterator, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	upstream, err := f.upstream.SequentialIterator()
	if err != nil {
		return nil, err
	}
	return &cropIterator{filter: f, upstream: upstream}, nil
}

// RandomIterator is not supported by this filter.
func (f *CropFilter) RandomIterator() (RandomIterator, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", f.name, ErrUnsupportedIterator)
}

type cropIterator struct {
	filter   *CropFilter
	upstream SequentialIterator
	done     bool
}

func (it *cropIterator) Read(buf *Buffer) (int, error) {
	schema := buf.Layout().Schema()
	ix := schema.Index(DimXF64)
	iy := schema.Index(DimYF64)
	iz := schema.Index(DimZF64)

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
			if it.filter.clip.Contains(scratch.Float64At(i, ix), scratch.Float64At(i, iy), scratch.Float64At(i, iz)) {
				buf.CopyPoint(out, scratch, i)
				out++
			}
		}
	}
	buf.SetCount(out)
	return out, nil
}
