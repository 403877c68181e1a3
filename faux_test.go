package pointpipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSchemaLayout(t *testing.T, st Stage) *Layout {
	t.Helper()
	schema, err := st.Schema()
	require.NoError(t, err)
	return NewLayout(schema)
}

func stdIndexes(t *testing.T, l *Layout) (ix, iy, iz, it int) {
	t.Helper()
	s := l.Schema()
	ix, iy, iz, it = s.Index(DimXF64), s.Index(DimYF64), s.Index(DimZF64), s.Index(DimTimeU64)
	require.NotEqual(t, -1, ix)
	require.NotEqual(t, -1, iy)
	require.NotEqual(t, -1, iz)
	require.NotEqual(t, -1, it)
	return
}

func TestFauxReaderConstantModeSequential(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 101.0, 102.0, 103.0)
	reader := NewFauxReader(bounds, 1000, ModeConstant)
	require.NoError(t, reader.Initialize())

	assert.Equal(t, "Faux Reader", reader.Description())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 750)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)

	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 750, n)
	require.Equal(t, 750, buf.Count())

	ix, iy, iz, it := stdIndexes(t, layout)
	for i := 0; i < n; i++ {
		assert.InEpsilon(t, 1.0, buf.Float64At(i, ix), 1e-5)
		assert.InEpsilon(t, 2.0, buf.Float64At(i, iy), 1e-5)
		assert.InEpsilon(t, 3.0, buf.Float64At(i, iz), 1e-5)
		assert.Equal(t, uint64(i), buf.Uint64At(i, it))
	}
}

func TestFauxReaderFromOptions(t *testing.T) {
	opts := Options{
		"bounds":     []float64{1.0, 2.0, 3.0, 101.0, 102.0, 103.0},
		"mode":       "conSTanT",
		"num_points": 1000,
		"id":         90210,
	}
	reader, err := NewFauxReaderFromOptions(opts)
	require.NoError(t, err)
	require.NoError(t, reader.Initialize())

	assert.Equal(t, "Faux Reader", reader.Description())
	assert.Equal(t, uint32(90210), reader.ID())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 750)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)

	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 750, n)

	ix, iy, iz, it := stdIndexes(t, layout)
	for i := 0; i < n; i++ {
		assert.InEpsilon(t, 1.0, buf.Float64At(i, ix), 1e-5)
		assert.InEpsilon(t, 2.0, buf.Float64At(i, iy), 1e-5)
		assert.InEpsilon(t, 3.0, buf.Float64At(i, iz), 1e-5)
		assert.Equal(t, uint64(i), buf.Uint64At(i, it))
	}
}

func TestFauxReaderFromOptionsYAML(t *testing.T) {
	opts, err := OptionsFromYAML([]byte(`
bounds: [0, 0, 0, 4, 4, 4]
mode: Ramp
num_points: 2
`))
	require.NoError(t, err)

	reader, err := NewFauxReaderFromOptions(opts)
	require.NoError(t, err)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 2)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)
	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ix, _, _, _ := stdIndexes(t, layout)
	assert.InDelta(t, 0.0, buf.Float64At(0, ix), 1e-9)
	assert.InDelta(t, 4.0, buf.Float64At(1, ix), 1e-9)
}

func TestFauxReaderConstantModeRandomIterator(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 101.0, 102.0, 103.0)
	reader := NewFauxReader(bounds, 1000, ModeConstant)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 10)
	ix, iy, iz, it := stdIndexes(t, layout)

	iter, err := reader.RandomIterator()
	require.NoError(t, err)

	checkBatch := func(base uint64) {
		t.Helper()
		n, err := iter.Read(buf)
		require.NoError(t, err)
		require.Equal(t, 10, n)
		for i := 0; i < n; i++ {
			assert.InEpsilon(t, 1.0, buf.Float64At(i, ix), 1e-5)
			assert.InEpsilon(t, 2.0, buf.Float64At(i, iy), 1e-5)
			assert.InEpsilon(t, 3.0, buf.Float64At(i, iz), 1e-5)
			assert.Equal(t, base+uint64(i), buf.Uint64At(i, it))
		}
	}

	checkBatch(0)
	checkBatch(10)

	pos, err := iter.Seek(99)
	require.NoError(t, err)
	require.Equal(t, uint64(99), pos)
	checkBatch(99)

	pos, err = iter.Seek(7)
	require.NoError(t, err)
	require.Equal(t, uint64(7), pos)
	checkBatch(7)
}

func TestFauxReaderRandomMode(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 101.0, 102.0, 103.0)
	reader := NewFauxReader(bounds, 1000, ModeRandom)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 750)
	ix, iy, iz, it := stdIndexes(t, layout)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)
	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 750, n)

	for i := 0; i < n; i++ {
		x, y, z := buf.Float64At(i, ix), buf.Float64At(i, iy), buf.Float64At(i, iz)
		assert.GreaterOrEqual(t, x, 1.0)
		assert.LessOrEqual(t, x, 101.0)
		assert.GreaterOrEqual(t, y, 2.0)
		assert.LessOrEqual(t, y, 102.0)
		assert.GreaterOrEqual(t, z, 3.0)
		assert.LessOrEqual(t, z, 103.0)
		assert.Equal(t, uint64(i), buf.Uint64At(i, it))
	}
}

// Random-mode values are a function of the global index, so a seek must
// reproduce exactly what a sequential scan saw at the same positions.
func TestFauxReaderRandomModeSeekContinuity(t *testing.T) {
	bounds := NewBounds(0, 0, 0, 10, 10, 10)
	reader := NewFauxReader(bounds, 200, ModeRandom)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	ix, iy, iz, _ := stdIndexes(t, layout)

	sequential := NewBuffer(layout, 200)
	seqIter, err := reader.SequentialIterator()
	require.NoError(t, err)
	n, err := seqIter.Read(sequential)
	require.NoError(t, err)
	require.Equal(t, 200, n)

	sought := NewBuffer(layout, 50)
	randIter, err := reader.RandomIterator()
	require.NoError(t, err)
	_, err = randIter.Seek(120)
	require.NoError(t, err)
	n, err = randIter.Read(sought)
	require.NoError(t, err)
	require.Equal(t, 50, n)

	for i := 0; i < n; i++ {
		assert.Equal(t, sequential.Float64At(120+i, ix), sought.Float64At(i, ix))
		assert.Equal(t, sequential.Float64At(120+i, iy), sought.Float64At(i, iy))
		assert.Equal(t, sequential.Float64At(120+i, iz), sought.Float64At(i, iz))
	}
}

func TestFauxReaderRampModeTwoPoints(t *testing.T) {
	bounds := NewBounds(0, 0, 0, 4, 4, 4)
	reader := NewFauxReader(bounds, 2, ModeRamp)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 2)
	ix, iy, iz, it := stdIndexes(t, layout)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)
	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	assert.InDelta(t, 0.0, buf.Float64At(0, ix), 1e-9)
	assert.InDelta(t, 0.0, buf.Float64At(0, iy), 1e-9)
	assert.InDelta(t, 0.0, buf.Float64At(0, iz), 1e-9)
	assert.Equal(t, uint64(0), buf.Uint64At(0, it))

	assert.InEpsilon(t, 4.0, buf.Float64At(1, ix), 1e-5)
	assert.InEpsilon(t, 4.0, buf.Float64At(1, iy), 1e-5)
	assert.InEpsilon(t, 4.0, buf.Float64At(1, iz), 1e-5)
	assert.Equal(t, uint64(1), buf.Uint64At(1, it))
}

func TestFauxReaderRampModeInterpolation(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 101.0, 152.0, 203.0)
	reader := NewFauxReader(bounds, 750, ModeRamp)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 750)
	ix, iy, iz, it := stdIndexes(t, layout)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)
	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 750, n)

	delX := (101.0 - 1.0) / (750.0 - 1.0)
	delY := (152.0 - 2.0) / (750.0 - 1.0)
	delZ := (203.0 - 3.0) / (750.0 - 1.0)

	for i := 0; i < n; i++ {
		assert.InEpsilon(t, 1.0+delX*float64(i), buf.Float64At(i, ix), 1e-5)
		assert.InEpsilon(t, 2.0+delY*float64(i), buf.Float64At(i, iy), 1e-5)
		assert.InEpsilon(t, 3.0+delZ*float64(i), buf.Float64At(i, iz), 1e-5)
		assert.Equal(t, uint64(i), buf.Uint64At(i, it))
	}
}

func TestFauxReaderRampModeSinglePoint(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 9.0, 9.0, 9.0)
	reader := NewFauxReader(bounds, 1, ModeRamp)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 10)
	ix, iy, iz, _ := stdIndexes(t, layout)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)
	n, err := iter.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	assert.InEpsilon(t, 1.0, buf.Float64At(0, ix), 1e-5)
	assert.InEpsilon(t, 2.0, buf.Float64At(0, iy), 1e-5)
	assert.InEpsilon(t, 3.0, buf.Float64At(0, iz), 1e-5)
}

func TestFauxReaderCustomDimensions(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 101.0, 102.0, 103.0)
	dims := []Dimension{NewDimension(DimRedU8), NewDimension(DimBlueU8)}
	reader := NewFauxReaderWithDimensions(bounds, 1000, ModeRandom, dims)
	require.NoError(t, reader.Initialize())

	schema, err := reader.Schema()
	require.NoError(t, err)
	require.Equal(t, 2, schema.Len())
	assert.Equal(t, DimRedU8, schema.Dimension(0).ID())
	assert.Equal(t, DimBlueU8, schema.Dimension(1).ID())
}

func TestFauxReaderIteratorCapabilities(t *testing.T) {
	bounds := NewBounds(1.0, 2.0, 3.0, 101.0, 152.0, 203.0)
	reader := NewFauxReader(bounds, 750, ModeRamp)
	require.NoError(t, reader.Initialize())

	assert.True(t, reader.SupportsIterator(IteratorSequential))
	assert.True(t, reader.SupportsIterator(IteratorRandom))
}

func TestFauxReaderEndOfStreamStability(t *testing.T) {
	bounds := NewBounds(0, 0, 0, 1, 1, 1)
	reader := NewFauxReader(bounds, 1000, ModeConstant)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	buf := NewBuffer(layout, 750)

	iter, err := reader.SequentialIterator()
	require.NoError(t, err)

	n, err := iter.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 750, n)

	// Short read signals end of stream.
	n, err = iter.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, 250, buf.Count())

	// Reads past the end stay at zero, repeatably and without error.
	for i := 0; i < 3; i++ {
		n, err = iter.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
}

func TestFauxReaderIndependentIterators(t *testing.T) {
	bounds := NewBounds(0, 0, 0, 1, 1, 1)
	reader := NewFauxReader(bounds, 100, ModeConstant)
	require.NoError(t, reader.Initialize())

	layout := mustSchemaLayout(t, reader)
	_, _, _, it := stdIndexes(t, layout)

	a, err := reader.SequentialIterator()
	require.NoError(t, err)
	b, err := reader.SequentialIterator()
	require.NoError(t, err)

	bufA := NewBuffer(layout, 30)
	bufB := NewBuffer(layout, 30)

	_, err = a.Read(bufA)
	require.NoError(t, err)
	_, err = a.Read(bufA)
	require.NoError(t, err)

	// The second iterator's cursor is unaffected by the first's progress.
	n, err := b.Read(bufB)
	require.NoError(t, err)
	require.Equal(t, 30, n)
	assert.Equal(t, uint64(0), bufB.Uint64At(0, it))
}

func TestFauxReaderUseBeforeInitialize(t *testing.T) {
	reader := NewFauxReader(NewBounds(0, 0, 0, 1, 1, 1), 10, ModeConstant)

	_, err := reader.Schema()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = reader.SequentialIterator()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = reader.RandomIterator()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestFauxReaderDoubleInitialize(t *testing.T) {
	reader := NewFauxReader(NewBounds(0, 0, 0, 1, 1, 1), 10, ModeConstant)
	require.NoError(t, reader.Initialize())
	assert.ErrorIs(t, reader.Initialize(), ErrAlreadyInitialized)
}
