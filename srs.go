package pointpipe

// WKTMode selects which textual form of a spatial reference to produce.
type WKTMode int

const (
	// WKTCompact is the horizontal-only form.
	WKTCompact WKTMode = iota
	// WKTCompoundOK permits compound (horizontal + vertical) systems. Stages
	// use this form when requesting transform construction so vertical
	// information is not silently dropped.
	WKTCompoundOK
)

// SpatialReference is an opaque coordinate-reference-system identity. It
// carries only descriptor text; no CRS semantics are evaluated locally. The
// descriptor is handed to a TransformProvider to request a transform
// capability.
type SpatialReference struct {
	horizontal string
	vertical   string
}

// NewSpatialReference wraps a textual CRS descriptor (WKT or an authority
// code such as "EPSG:4326").
func NewSpatialReference(descriptor string) SpatialReference {
	return SpatialReference{horizontal: descriptor}
}

// NewCompoundSpatialReference wraps a horizontal descriptor together with a
// vertical one, forming a compound system.
func NewCompoundSpatialReference(horizontal, vertical string) SpatialReference {
	return SpatialReference{horizontal: horizontal, vertical: vertical}
}

// Empty reports whether no descriptor has been set.
func (s SpatialReference) Empty() bool { return s.horizontal == "" && s.vertical == "" }

// WKT returns the descriptor text. In WKTCompact mode only the horizontal
// component is returned; in WKTCompoundOK mode a compound descriptor is
// produced when a vertical component is present.
func (s SpatialReference) WKT(mode WKTMode) string {
	if mode == WKTCompoundOK && s.vertical != "" {
		return `COMPD_CS["compound",` + s.horizontal + `,` + s.vertical + `]`
	}
	return s.horizontal
}

func (s SpatialReference) String() string { return s.WKT(WKTCompact) }
