package pointpipe

import "fmt"

// DimType is the declared storage type of a dimension. The byte width of a
// dimension follows from its type tag.
type DimType int

const (
	TypeFloat64 DimType = iota
	TypeUint64
	TypeUint16
	TypeUint8
)

// Width returns the fixed byte width of the type.
func (t DimType) Width() int {
	switch t {
	case TypeFloat64, TypeUint64:
		return 8
	case TypeUint16:
		return 2
	case TypeUint8:
		return 1
	default:
		panic(fmt.Sprintf("pointpipe: unknown dimension type %d", int(t)))
	}
}

func (t DimType) String() string {
	switch t {
	case TypeFloat64:
		return "float64"
	case TypeUint64:
		return "uint64"
	case TypeUint16:
		return "uint16"
	case TypeUint8:
		return "uint8"
	default:
		return fmt.Sprintf("DimType(%d)", int(t))
	}
}

// DimensionID identifies a point attribute together with its declared type,
// e.g. X stored as float64 or Time stored as uint64. The type is part of the
// identity: a schema carrying X as anything other than float64 does not
// satisfy a stage that requires DimXF64.
type DimensionID int

const (
	DimXF64 DimensionID = iota
	DimYF64
	DimZF64
	DimTimeU64
	DimIntensityU16
	DimRedU8
	DimGreenU8
	DimBlueU8
	DimClassificationU8
)

var dimensionInfo = map[DimensionID]struct {
	name string
	typ  DimType
}{
	DimXF64:             {"X", TypeFloat64},
	DimYF64:             {"Y", TypeFloat64},
	DimZF64:             {"Z", TypeFloat64},
	DimTimeU64:          {"Time", TypeUint64},
	DimIntensityU16:     {"Intensity", TypeUint16},
	DimRedU8:            {"Red", TypeUint8},
	DimGreenU8:          {"Green", TypeUint8},
	DimBlueU8:           {"Blue", TypeUint8},
	DimClassificationU8: {"Classification", TypeUint8},
}

// Dimension is a single named, typed per-point attribute. Immutable once
// constructed.
type Dimension struct {
	id DimensionID
}

// NewDimension creates the dimension for a known id. Unknown ids panic; the
// id set is closed.
func NewDimension(id DimensionID) Dimension {
	if _, ok := dimensionInfo[id]; !ok {
		panic(fmt.Sprintf("pointpipe: unknown dimension id %d", int(id)))
	}
	return Dimension{id: id}
}

// ID returns the dimension's identity.
func (d Dimension) ID() DimensionID { return d.id }

// Name returns the attribute name, e.g. "X".
func (d Dimension) Name() string { return dimensionInfo[d.id].name }

// Type returns the declared storage type.
func (d Dimension) Type() DimType { return dimensionInfo[d.id].typ }

// ByteWidth returns the storage width derived from the type tag.
func (d Dimension) ByteWidth() int { return dimensionInfo[d.id].typ.Width() }

func (d Dimension) String() string {
	return fmt.Sprintf("%s:%s", d.Name(), d.Type())
}
