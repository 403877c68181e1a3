package pointpipe

import "fmt"

// ReprojectionFilter transforms every point's (X, Y, Z) from an input CRS to
// an output CRS, updating the stage's bounds and spatial-reference metadata.
//
// The input CRS may be given explicitly or inferred from the upstream
// stage's spatial reference at Initialize time. The transform capability is
// acquired once during Initialize and must be released with Close when the
// filter is no longer needed.
type ReprojectionFilter struct {
	filterCore

	inSRS      SpatialReference
	outSRS     SpatialReference
	inferInput bool

	provider  TransformProvider
	transform *Transform
}

// NewReprojectionFilter builds the filter from options. Recognized keys:
// "out_srs" (required) and "in_srs" (optional; its absence selects inference
// from the upstream stage).
func NewReprojectionFilter(upstream Stage, opts Options) (*ReprojectionFilter, error) {
	out, err := opts.SpatialReference("out_srs")
	if err != nil {
		return nil, err
	}
	f := newReprojection(upstream)
	f.outSRS = out
	f.inferInput = true
	if opts.Has("in_srs") {
		in, err := opts.SpatialReference("in_srs")
		if err != nil {
			return nil, err
		}
		f.inSRS = in
		f.inferInput = false
	}
	return f, nil
}

// NewReprojectionFilterTo builds the filter with an explicit output CRS; the
// input CRS is inferred from the upstream stage during Initialize.
func NewReprojectionFilterTo(upstream Stage, out SpatialReference) *ReprojectionFilter {
	f := newReprojection(upstream)
	f.outSRS = out
	f.inferInput = true
	return f
}

// NewReprojectionFilterBetween builds the filter with explicit input and
// output CRS, no inference.
func NewReprojectionFilterBetween(upstream Stage, in, out SpatialReference) *ReprojectionFilter {
	f := newReprojection(upstream)
	f.inSRS = in
	f.outSRS = out
	f.inferInput = false
	return f
}

func newReprojection(upstream Stage) *ReprojectionFilter {
	f := &ReprojectionFilter{provider: NewProjProvider()}
	f.name = "filters.reprojection"
	f.description = "Reprojection Filter"
	f.upstream = upstream
	return f
}

// SetTransformProvider replaces the CRS backend. Must be called before
// Initialize.
func (f *ReprojectionFilter) SetTransformProvider(p TransformProvider) { f.provider = p }

// Initialize runs base initialization, checks schema impedance, resolves the
// input CRS (inferring it from upstream if selected), acquires the transform
// capability, adopts the output CRS as this stage's spatial reference and
// recomputes bounds. Any failure aborts pipeline construction.
func (f *ReprojectionFilter) Initialize() error {
	if err := f.initBase(); err != nil {
		return err
	}
	if err := f.checkImpedance(); err != nil {
		return err
	}
	if f.inferInput {
		f.inSRS = f.srs
	}
	t, err := f.provider.Acquire(f.inSRS, f.outSRS)
	if err != nil {
		return fmt.Errorf("%s: %w", f.name, err)
	}
	f.transform = t
	f.srs = f.outSRS
	f.updateBounds()
	f.initialized = true
	return nil
}

// Close releases the acquired transform capability.
func (f *ReprojectionFilter) Close() error {
	if f.transform == nil {
		return nil
	}
	t := f.transform
	f.transform = nil
	return t.Close()
}

// checkImpedance requires X, Y and Z present as float64 in the inherited
// schema.
func (f *ReprojectionFilter) checkImpedance() error {
	if !f.schema.Has(DimXF64) || !f.schema.Has(DimYF64) || !f.schema.Has(DimZF64) {
		return &ImpedanceError{
			Stage:       f.name,
			Requirement: "X, Y and Z dimensions as float64",
		}
	}
	return nil
}

// updateBounds transforms the inherited box's two corners and replaces the
// bounds with the result. This is a crude corner approximation; downstream
// consumers must treat reprojected bounds as advisory. A transform failure
// here leaves the bounds at their prior value: bounds are best-effort
// metadata, unlike point data.
func (f *ReprojectionFilter) updateBounds() {
	minX, minY, minZ, err := f.applyTransform(f.bounds.Minimum(0), f.bounds.Minimum(1), f.bounds.Minimum(2))
	if err != nil {
		return
	}
	maxX, maxY, maxZ, err := f.applyTransform(f.bounds.Maximum(0), f.bounds.Maximum(1), f.bounds.Maximum(2))
	if err != nil {
		return
	}
	f.bounds = NewBounds(minX, minY, minZ, maxX, maxY, maxZ)
}

func (f *ReprojectionFilter) applyTransform(x, y, z float64) (float64, float64, float64, error) {
	return f.transform.Apply(x, y, z)
}

// ProcessBuffer transforms points 0..Count of the buffer in place. A
// per-point failure is fatal for the whole buffer; there is no partial
// success.
func (f *ReprojectionFilter) ProcessBuffer(buf *Buffer) error {
	schema := buf.Layout().Schema()
	ix := schema.Index(DimXF64)
	iy := schema.Index(DimYF64)
	iz := schema.Index(DimZF64)

	for i := 0; i < buf.Count(); i++ {
		x, y, z, err := f.applyTransform(buf.Float64At(i, ix), buf.Float64At(i, iy), buf.Float64At(i, iz))
		if err != nil {
			return err
		}
		buf.SetFloat64At(i, ix, x)
		buf.SetFloat64At(i, iy, y)
		buf.SetFloat64At(i, iz, z)
	}
	return nil
}

// SupportsIterator reports sequential-only support.
func (f *ReprojectionFilter) SupportsIterator(kind IteratorKind) bool {
	return kind == IteratorSequential
}

// SequentialIterator returns a decorator over the upstream's sequential
// iterator that reprojects every buffer before handing it to the caller.
func (f *ReprojectionFilter) SequentialIterator() (SequentialIterator, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	upstream, err := f.upstream.SequentialIterator()
	if err != nil {
		return nil, err
	}
	return &reprojectionIterator{filter: f, upstream: upstream}, nil
}

// RandomIterator is not supported by this filter.
func (f *ReprojectionFilter) RandomIterator() (RandomIterator, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", f.name, ErrUnsupportedIterator)
}

type reprojectionIterator struct {
	filter   *ReprojectionFilter
	upstream SequentialIterator
}

func (it *reprojectionIterator) Read(buf *Buffer) (int, error) {
	n, err := it.upstream.Read(buf)
	if err != nil {
		return 0, err
	}
	if err := it.filter.ProcessBuffer(buf); err != nil {
		return 0, err
	}
	return n, nil
}
