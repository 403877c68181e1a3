package pointpipe

import "fmt"

// Schema is an ordered sequence of dimensions describing a point's structure.
// Order is significant: it defines buffer column order and is part of a
// reader's contract. Dimensions are unique by id.
type Schema struct {
	dims  []Dimension
	index map[DimensionID]int
}

// NewSchema builds a schema from dimensions in declaration order. A duplicate
// dimension id is an error.
func NewSchema(dims ...Dimension) (*Schema, error) {
	s := &Schema{
		dims:  make([]Dimension, len(dims)),
		index: make(map[DimensionID]int, len(dims)),
	}
	copy(s.dims, dims)
	for i, d := range dims {
		if _, ok := s.index[d.ID()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDimension, d)
		}
		s.index[d.ID()] = i
	}
	return s, nil
}

// Len returns the number of dimensions.
func (s *Schema) Len() int { return len(s.dims) }

// Dimension returns the dimension at position i.
func (s *Schema) Dimension(i int) Dimension { return s.dims[i] }

// Dimensions returns a copy of the ordered dimension list.
func (s *Schema) Dimensions() []Dimension {
	out := make([]Dimension, len(s.dims))
	copy(out, s.dims)
	return out
}

// Index returns the position of the dimension with the given id, or -1 if the
// schema does not carry it.
func (s *Schema) Index(id DimensionID) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// Has reports whether the schema carries the dimension. Because the declared
// type is part of a DimensionID, this is also the typed requirement check.
func (s *Schema) Has(id DimensionID) bool {
	_, ok := s.index[id]
	return ok
}

// Layout maps a schema to byte offsets per dimension and a per-point row
// stride. It is computed once and shared read-only by every buffer of the
// schema.
type Layout struct {
	schema  *Schema
	offsets []int
	stride  int
}

// NewLayout derives the layout for a schema.
func NewLayout(s *Schema) *Layout {
	l := &Layout{
		schema:  s,
		offsets: make([]int, s.Len()),
	}
	off := 0
	for i := 0; i < s.Len(); i++ {
		l.offsets[i] = off
		off += s.Dimension(i).ByteWidth()
	}
	l.stride = off
	return l
}

// Schema returns the schema the layout was derived from.
func (l *Layout) Schema() *Schema { return l.schema }

// Offset returns the byte offset of dimension i within a point row.
func (l *Layout) Offset(i int) int { return l.offsets[i] }

// Stride returns the per-point row width in bytes.
func (l *Layout) Stride() int { return l.stride }
