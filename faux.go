package pointpipe

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// GenerationMode selects how the faux reader synthesizes point coordinates.
type GenerationMode int

const (
	// ModeConstant sets every point's X/Y/Z to the bounds' minimum corner.
	ModeConstant GenerationMode = iota
	// ModeRandom draws X/Y/Z independently, uniform per axis within the
	// bounds.
	ModeRandom
	// ModeRamp interpolates X/Y/Z linearly from the minimum corner at index
	// 0 to the maximum corner at index total-1.
	ModeRamp
)

// ParseGenerationMode parses a mode name, case-insensitively.
func ParseGenerationMode(s string) (GenerationMode, error) {
	switch strings.ToLower(s) {
	case "constant":
		return ModeConstant, nil
	case "random":
		return ModeRandom, nil
	case "ramp":
		return ModeRamp, nil
	default:
		return 0, fmt.Errorf("pointpipe: unknown generation mode %q", s)
	}
}

// FauxReader is a synthetic point generator. It is the contract reference
// implementation for readers: both iterator kinds are supported, and every
// generated field is a pure function of the point's global index and the
// reader's immutable configuration, so seek-then-read matches continuous
// sequential reading exactly.
//
// The default schema is X, Y, Z as float64 plus Time as uint64; Time always
// equals the global point index. A custom dimension list may be supplied, in
// which case only the standard dimensions it contains are populated.
type FauxReader struct {
	stageCore

	box   Bounds
	total uint64
	mode  GenerationMode
	dims  []Dimension
	id    uint32
	seed  uint64
	inSRS SpatialReference
}

// NewFauxReader creates a reader generating total points within bounds using
// the given mode and the default dimension list.
func NewFauxReader(bounds Bounds, total uint64, mode GenerationMode) *FauxReader {
	r := &FauxReader{box: bounds, total: total, mode: mode}
	r.name = "readers.faux"
	r.description = "Faux Reader"
	return r
}

// NewFauxReaderWithDimensions creates a reader with an explicit dimension
// list in declared order.
func NewFauxReaderWithDimensions(bounds Bounds, total uint64, mode GenerationMode, dims []Dimension) *FauxReader {
	r := NewFauxReader(bounds, total, mode)
	r.dims = make([]Dimension, len(dims))
	copy(r.dims, dims)
	return r
}

// NewFauxReaderFromOptions creates a reader from options. Recognized keys:
// "bounds" (six numbers), "mode" (case-insensitive constant/random/ramp),
// "num_points", and optionally "id", "seed" and "spatial_reference".
func NewFauxReaderFromOptions(opts Options) (*FauxReader, error) {
	bounds, err := opts.Bounds("bounds")
	if err != nil {
		return nil, err
	}
	modeName, err := opts.String("mode")
	if err != nil {
		return nil, err
	}
	mode, err := ParseGenerationMode(modeName)
	if err != nil {
		return nil, err
	}
	total, err := opts.Int("num_points")
	if err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, fmt.Errorf("pointpipe: option \"num_points\": negative count %d", total)
	}
	r := NewFauxReader(bounds, uint64(total), mode)
	if opts.Has("id") {
		id, err := opts.Int("id")
		if err != nil {
			return nil, err
		}
		r.id = uint32(id)
	}
	if opts.Has("seed") {
		seed, err := opts.Int("seed")
		if err != nil {
			return nil, err
		}
		r.seed = uint64(seed)
	}
	if opts.Has("spatial_reference") {
		srs, err := opts.SpatialReference("spatial_reference")
		if err != nil {
			return nil, err
		}
		r.inSRS = srs
	}
	return r, nil
}

// ID returns the stage id assigned via options, zero otherwise.
func (r *FauxReader) ID() uint32 { return r.id }

// SetSeed fixes the random-mode seed. Must be called before Initialize.
func (r *FauxReader) SetSeed(seed uint64) { r.seed = seed }

// SetSpatialReference declares the CRS the synthetic points are generated
// in. Must be called before Initialize.
func (r *FauxReader) SetSpatialReference(srs SpatialReference) { r.inSRS = srs }

// Initialize builds the reader's schema and publishes its metadata. The
// reader has no upstream, so there is nothing to inherit or impedance-check.
func (r *FauxReader) Initialize() error {
	if err := r.beginInit(); err != nil {
		return err
	}
	dims := r.dims
	if dims == nil {
		dims = []Dimension{
			NewDimension(DimXF64),
			NewDimension(DimYF64),
			NewDimension(DimZF64),
			NewDimension(DimTimeU64),
		}
	}
	schema, err := NewSchema(dims...)
	if err != nil {
		return fmt.Errorf("%s: %w", r.name, err)
	}
	r.schema = schema
	r.bounds = r.box
	r.srs = r.inSRS
	r.initialized = true
	return nil
}

// SupportsIterator reports support for both iterator kinds.
func (r *FauxReader) SupportsIterator(kind IteratorKind) bool {
	return kind == IteratorSequential || kind == IteratorRandom
}

// SequentialIterator creates a sequential iterator with its cursor at 0.
func (r *FauxReader) SequentialIterator() (SequentialIterator, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	return &fauxIterator{reader: r}, nil
}

// RandomIterator creates a random-access iterator with its cursor at 0.
func (r *FauxReader) RandomIterator() (RandomIterator, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	return &fauxIterator{reader: r}, nil
}

// coord computes the (x, y, z) for a global point index. Pure function of
// the index and the reader configuration.
func (r *FauxReader) coord(global uint64) (float64, float64, float64) {
	switch r.mode {
	case ModeConstant:
		return r.box.Minimum(0), r.box.Minimum(1), r.box.Minimum(2)
	case ModeRamp:
		if r.total <= 1 {
			// Single point: no defined ramp denominator.
			return r.box.Minimum(0), r.box.Minimum(1), r.box.Minimum(2)
		}
		frac := float64(global) / float64(r.total-1)
		return r.box.Minimum(0) + (r.box.Maximum(0)-r.box.Minimum(0))*frac,
			r.box.Minimum(1) + (r.box.Maximum(1)-r.box.Minimum(1))*frac,
			r.box.Minimum(2) + (r.box.Maximum(2)-r.box.Minimum(2))*frac
	case ModeRandom:
		// One generator per point, keyed by the global index, keeps the
		// draw independent of buffer boundaries and seek history.
		src := rand.NewPCG(r.seed, global)
		x := distuv.Uniform{Min: r.box.Minimum(0), Max: r.box.Maximum(0), Src: src}.Rand()
		y := distuv.Uniform{Min: r.box.Minimum(1), Max: r.box.Maximum(1), Src: src}.Rand()
		z := distuv.Uniform{Min: r.box.Minimum(2), Max: r.box.Maximum(2), Src: src}.Rand()
		return x, y, z
	default:
		panic(fmt.Sprintf("pointpipe: unknown generation mode %d", int(r.mode)))
	}
}

// fill writes points for global indices [start, start+n) into the buffer,
// where n is bounded by the buffer capacity and the remaining stream length,
// and sets the buffer count. Returns n.
func (r *FauxReader) fill(buf *Buffer, start uint64) int {
	n := buf.Capacity()
	if start >= r.total {
		n = 0
	} else if remaining := r.total - start; uint64(n) > remaining {
		n = int(remaining)
	}

	schema := buf.Layout().Schema()
	ix := schema.Index(DimXF64)
	iy := schema.Index(DimYF64)
	iz := schema.Index(DimZF64)
	it := schema.Index(DimTimeU64)

	for i := 0; i < n; i++ {
		global := start + uint64(i)
		x, y, z := r.coord(global)
		if ix >= 0 {
			buf.SetFloat64At(i, ix, x)
		}
		if iy >= 0 {
			buf.SetFloat64At(i, iy, y)
		}
		if iz >= 0 {
			buf.SetFloat64At(i, iz, z)
		}
		if it >= 0 {
			buf.SetUint64At(i, it, global)
		}
	}
	buf.SetCount(n)
	return n
}

// fauxIterator satisfies both iterator contracts; Seek is simply absolute
// cursor placement because generation is index-pure.
type fauxIterator struct {
	reader *FauxReader
	cursor uint64
}

func (it *fauxIterator) Read(buf *Buffer) (int, error) {
	n := it.reader.fill(buf, it.cursor)
	it.cursor += uint64(n)
	return n, nil
}

func (it *fauxIterator) Seek(position uint64) (uint64, error) {
	it.cursor = position
	return position, nil
}
