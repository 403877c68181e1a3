package pointpipe

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
)

// ExportOptions configures FlatGeobuf export of a point stream.
type ExportOptions struct {
	Name           string // layer name
	Description    string // layer description
	IncludeIndex   bool   // include a spatial index in the output
	BufferCapacity int    // points pulled per iterator read (default 1024)
}

// DefaultExportOptions returns defaults for ExportFlatGeobuf.
func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{IncludeIndex: true, BufferCapacity: 1024}
}

// ExportFlatGeobuf drains the stage through a sequential iterator and writes
// every point as a FlatGeobuf Point feature. X and Y become the feature
// geometry; every other schema dimension (Z included) becomes a typed
// property column named after the dimension. The layer CRS is taken from the
// stage's spatial reference when it maps to an EPSG code.
//
// The stage must be initialized and its schema must carry X and Y as
// float64. Returns the number of points written.
func ExportFlatGeobuf(w io.Writer, st Stage, opts *ExportOptions) (uint64, error) {
	if opts == nil {
		opts = DefaultExportOptions()
	}
	capacity := opts.BufferCapacity
	if capacity <= 0 {
		capacity = 1024
	}

	schema, err := st.Schema()
	if err != nil {
		return 0, err
	}
	if !schema.Has(DimXF64) || !schema.Has(DimYF64) {
		return 0, &ImpedanceError{
			Stage:       "writers.flatgeobuf",
			Requirement: "X and Y dimensions as float64",
		}
	}
	srs, err := st.SpatialReference()
	if err != nil {
		return 0, err
	}
	iter, err := st.SequentialIterator()
	if err != nil {
		return 0, err
	}

	builder := flatbuffers.NewBuilder(4096)
	header := writer.NewHeader(builder)
	header.SetGeometryType(flattypes.GeometryTypePoint)
	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}

	gen := newStageFeatureGenerator(schema, iter, capacity, builder)
	if len(gen.columns) > 0 {
		header.SetColumns(gen.columns)
	}

	if code, ok := EPSGCode(srs); ok {
		crs := writer.NewCrs(builder)
		crs.SetOrg("EPSG")
		crs.SetCode(int32(code))
		header.SetCrs(crs)
	}

	fgbWriter := writer.NewWriter(header, opts.IncludeIndex, gen, nil)
	if _, err := fgbWriter.Write(w); err != nil {
		return gen.written, err
	}
	if gen.err != nil {
		// A read failure stops generation early; surface it over the
		// writer's own success.
		return gen.written, gen.err
	}
	return gen.written, nil
}

// propColumn maps one non-geometry schema dimension onto a property column.
type propColumn struct {
	dimIndex int
	colIndex uint16
	dim      Dimension
}

// stageFeatureGenerator adapts the pull iterator to the FlatGeobuf writer's
// feature-generator contract: Generate returns one feature per point and nil
// at end of stream. Read errors are stashed and end generation.
type stageFeatureGenerator struct {
	iter SequentialIterator
	buf  *Buffer
	row  int

	xIndex, yIndex int
	props          []propColumn
	columns        []*writer.Column

	done    bool
	err     error
	written uint64
}

func newStageFeatureGenerator(schema *Schema, iter SequentialIterator, capacity int, colBuilder *flatbuffers.Builder) *stageFeatureGenerator {
	g := &stageFeatureGenerator{
		iter:   iter,
		buf:    NewBuffer(NewLayout(schema), capacity),
		xIndex: schema.Index(DimXF64),
		yIndex: schema.Index(DimYF64),
	}
	for i := 0; i < schema.Len(); i++ {
		if i == g.xIndex || i == g.yIndex {
			continue
		}
		d := schema.Dimension(i)
		col := writer.NewColumn(colBuilder)
		col.SetName(d.Name())
		col.SetTitle(d.Name())
		col.SetType(columnTypeFor(d.Type()))
		col.SetNullable(false)
		g.props = append(g.props, propColumn{
			dimIndex: i,
			colIndex: uint16(len(g.columns)),
			dim:      d,
		})
		g.columns = append(g.columns, col)
	}
	return g
}

func (g *stageFeatureGenerator) Generate() *writer.Feature {
	if g.done || g.err != nil {
		return nil
	}
	if g.row >= g.buf.Count() {
		n, err := g.iter.Read(g.buf)
		if err != nil {
			g.err = err
			return nil
		}
		if n == 0 {
			g.done = true
			return nil
		}
		g.row = 0
	}

	i := g.row
	g.row++
	g.written++

	builder := flatbuffers.NewBuilder(256)
	geom := writer.NewGeometry(builder)
	geom.SetType(flattypes.GeometryTypePoint)
	geom.SetXY([]float64{g.buf.Float64At(i, g.xIndex), g.buf.Float64At(i, g.yIndex)})

	feature := writer.NewFeature(builder)
	feature.SetGeometry(geom)

	if props := g.encodeProperties(i); len(props) > 0 {
		feature.SetProperties(props)
	}
	return feature
}

// encodeProperties emits the FlatGeobuf property encoding for point i:
// a little-endian uint16 column index followed by the value bytes, repeated
// per column.
func (g *stageFeatureGenerator) encodeProperties(i int) []byte {
	if len(g.props) == 0 {
		return nil
	}
	var buf bytes.Buffer
	scratch := make([]byte, 8)
	for _, pc := range g.props {
		binary.LittleEndian.PutUint16(scratch[:2], pc.colIndex)
		buf.Write(scratch[:2])
		switch pc.dim.Type() {
		case TypeFloat64:
			binary.LittleEndian.PutUint64(scratch, math.Float64bits(g.buf.Float64At(i, pc.dimIndex)))
			buf.Write(scratch[:8])
		case TypeUint64:
			binary.LittleEndian.PutUint64(scratch, g.buf.Uint64At(i, pc.dimIndex))
			buf.Write(scratch[:8])
		case TypeUint16:
			binary.LittleEndian.PutUint16(scratch[:2], g.buf.Uint16At(i, pc.dimIndex))
			buf.Write(scratch[:2])
		case TypeUint8:
			buf.WriteByte(g.buf.Uint8At(i, pc.dimIndex))
		}
	}
	return buf.Bytes()
}

// columnTypeFor maps a dimension's declared type onto the FlatGeobuf column
// type.
func columnTypeFor(t DimType) flattypes.ColumnType {
	switch t {
	case TypeFloat64:
		return flattypes.ColumnTypeDouble
	case TypeUint64:
		return flattypes.ColumnTypeULong
	case TypeUint16:
		return flattypes.ColumnTypeUShort
	case TypeUint8:
		return flattypes.ColumnTypeUByte
	default:
		return flattypes.ColumnTypeBinary
	}
}
