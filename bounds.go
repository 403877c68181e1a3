package pointpipe

import "fmt"

// Bounds is an axis-aligned 3D box: three (min, max) pairs over axes 0, 1, 2.
// Bounds are advisory stage metadata; they are derived during Initialize and
// never mutated by buffer processing directly.
type Bounds struct {
	min [3]float64
	max [3]float64
}

// NewBounds builds a box from the minimum and maximum corners.
func NewBounds(minX, minY, minZ, maxX, maxY, maxZ float64) Bounds {
	return Bounds{
		min: [3]float64{minX, minY, minZ},
		max: [3]float64{maxX, maxY, maxZ},
	}
}

// Minimum returns the lower bound on the given axis (0, 1 or 2).
func (b Bounds) Minimum(axis int) float64 { return b.min[axis] }

// Maximum returns the upper bound on the given axis (0, 1 or 2).
func (b Bounds) Maximum(axis int) float64 { return b.max[axis] }

// Contains reports whether (x, y, z) lies inside the box, inclusive on both
// corners.
func (b Bounds) Contains(x, y, z float64) bool {
	return x >= b.min[0] && x <= b.max[0] &&
		y >= b.min[1] && y <= b.max[1] &&
		z >= b.min[2] && z <= b.max[2]
}

func (b Bounds) String() string {
	return fmt.Sprintf("([%g, %g], [%g, %g], [%g, %g])",
		b.min[0], b.max[0], b.min[1], b.max[1], b.min[2], b.max[2])
}
