package pointpipe

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Buffer is a fixed-capacity row-major table of points whose columns are the
// schema's dimensions. It is created by a caller and populated by an
// iterator's Read; Count tracks the number of currently valid points.
//
// Field access is typed: each accessor checks the dimension's declared type
// so a value can never be read or written through the wrong width. Using an
// accessor whose type disagrees with the dimension, or a point index at or
// beyond the capacity, is a programmer error and panics.
type Buffer struct {
	layout   *Layout
	capacity int
	count    int
	data     []byte
}

// NewBuffer allocates a buffer for capacity points of the given layout.
func NewBuffer(layout *Layout, capacity int) *Buffer {
	if capacity < 0 {
		panic("pointpipe: negative buffer capacity")
	}
	return &Buffer{
		layout:   layout,
		capacity: capacity,
		data:     make([]byte, capacity*layout.Stride()),
	}
}

// Layout returns the shared layout the buffer was created with.
func (b *Buffer) Layout() *Layout { return b.layout }

// Capacity returns the fixed point capacity.
func (b *Buffer) Capacity() int { return b.capacity }

// Count returns the number of valid points, 0 <= Count <= Capacity.
func (b *Buffer) Count() int { return b.count }

// SetCount sets the number of valid points. It must equal the number of
// points actually produced, never the capacity by default.
func (b *Buffer) SetCount(n int) {
	if n < 0 || n > b.capacity {
		panic(fmt.Sprintf("pointpipe: count %d out of range [0, %d]", n, b.capacity))
	}
	b.count = n
}

// field returns the byte slice for (point, dim) after validating the index
// and the declared type.
func (b *Buffer) field(point, dim int, want DimType) []byte {
	if point < 0 || point >= b.capacity {
		panic(fmt.Sprintf("pointpipe: point index %d out of range [0, %d)", point, b.capacity))
	}
	d := b.layout.Schema().Dimension(dim)
	if d.Type() != want {
		panic(fmt.Sprintf("pointpipe: dimension %s accessed as %s", d, want))
	}
	off := point*b.layout.Stride() + b.layout.Offset(dim)
	return b.data[off : off+d.ByteWidth()]
}

// Float64At reads a float64 dimension at (point, dim).
func (b *Buffer) Float64At(point, dim int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b.field(point, dim, TypeFloat64)))
}

// SetFloat64At writes a float64 dimension at (point, dim).
func (b *Buffer) SetFloat64At(point, dim int, v float64) {
	binary.LittleEndian.PutUint64(b.field(point, dim, TypeFloat64), math.Float64bits(v))
}

// Uint64At reads a uint64 dimension at (point, dim).
func (b *Buffer) Uint64At(point, dim int) uint64 {
	return binary.LittleEndian.Uint64(b.field(point, dim, TypeUint64))
}

// SetUint64At writes a uint64 dimension at (point, dim).
func (b *Buffer) SetUint64At(point, dim int, v uint64) {
	binary.LittleEndian.PutUint64(b.field(point, dim, TypeUint64), v)
}

// Uint16At reads a uint16 dimension at (point, dim).
func (b *Buffer) Uint16At(point, dim int) uint16 {
	return binary.LittleEndian.Uint16(b.field(point, dim, TypeUint16))
}

// SetUint16At writes a uint16 dimension at (point, dim).
func (b *Buffer) SetUint16At(point, dim int, v uint16) {
	binary.LittleEndian.PutUint16(b.field(point, dim, TypeUint16), v)
}

// Uint8At reads a uint8 dimension at (point, dim).
func (b *Buffer) Uint8At(point, dim int) uint8 {
	return b.field(point, dim, TypeUint8)[0]
}

// SetUint8At writes a uint8 dimension at (point, dim).
func (b *Buffer) SetUint8At(point, dim int, v uint8) {
	b.field(point, dim, TypeUint8)[0] = v
}

// CopyPoint copies the whole row srcPoint of src into row dstPoint of b.
// Both buffers must share the same layout.
func (b *Buffer) CopyPoint(dstPoint int, src *Buffer, srcPoint int) {
	if b.layout != src.layout {
		panic("pointpipe: CopyPoint across different layouts")
	}
	if dstPoint < 0 || dstPoint >= b.capacity || srcPoint < 0 || srcPoint >= src.capacity {
		panic("pointpipe: CopyPoint index out of range")
	}
	stride := b.layout.Stride()
	copy(b.data[dstPoint*stride:(dstPoint+1)*stride], src.data[srcPoint*stride:(srcPoint+1)*stride])
}
