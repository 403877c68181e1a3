package pointpipe

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// TransformProvider is the external CRS backend capability: given two spatial
// reference descriptors, produce a point transform or fail. The core treats
// the provider as opaque; errors carry the backend diagnostic inline rather
// than through any global error state.
type TransformProvider interface {
	Acquire(in, out SpatialReference) (*Transform, error)
}

// webMercatorLatLimit is the latitude beyond which the spherical Mercator
// projection is undefined.
const webMercatorLatLimit = 85.05112877980659

// webMercatorExtent is the projected coordinate magnitude at the lat/lon
// limits.
const webMercatorExtent = 20037508.342789244

// crsKind is the closed set of systems the built-in provider understands.
type crsKind int

const (
	crsGeographicWGS84 crsKind = iota
	crsWebMercator
)

// crsHandle is a resolved CRS resource. Handles are scoped: Acquire resolves
// input, output and then the transform, and releases earlier handles when a
// later step fails.
type crsHandle struct {
	kind     crsKind
	provider *ProjProvider
	released bool
}

func (h *crsHandle) release() {
	if h.released {
		return
	}
	h.released = true
	h.provider.live--
}

// Transform is an acquired coordinate transform. It is reentrant and used
// read-only after acquisition; Close releases the underlying CRS resources.
type Transform struct {
	in, out  *crsHandle
	provider *ProjProvider
	closed   bool
}

// Apply transforms a single coordinate triple, returning the transformed
// values. Failure yields a TransformError carrying the pre-transform triple
// and the backend diagnostic.
func (t *Transform) Apply(x, y, z float64) (float64, float64, float64, error) {
	if t.closed {
		return 0, 0, 0, &TransformError{X: x, Y: y, Z: z, Diagnostic: ErrTransformReleased.Error()}
	}
	if t.in.kind == t.out.kind {
		return x, y, z, nil
	}
	switch t.in.kind {
	case crsGeographicWGS84:
		if math.Abs(x) > 180 || math.Abs(y) > webMercatorLatLimit {
			return 0, 0, 0, &TransformError{
				X: x, Y: y, Z: z,
				Diagnostic: fmt.Sprintf("longitude/latitude outside mercator validity (|lon| <= 180, |lat| <= %g)", webMercatorLatLimit),
			}
		}
		p := project.WGS84.ToMercator(orb.Point{x, y})
		return p[0], p[1], z, nil
	case crsWebMercator:
		if math.Abs(x) > webMercatorExtent || math.Abs(y) > webMercatorExtent {
			return 0, 0, 0, &TransformError{
				X: x, Y: y, Z: z,
				Diagnostic: fmt.Sprintf("projected coordinate outside mercator extent (|x|, |y| <= %g)", webMercatorExtent),
			}
		}
		p := project.Mercator.ToWGS84(orb.Point{x, y})
		return p[0], p[1], z, nil
	default:
		return 0, 0, 0, &TransformError{X: x, Y: y, Z: z, Diagnostic: "unsupported transform pair"}
	}
}

// Close releases the transform's CRS resources. Closing twice is an error.
func (t *Transform) Close() error {
	if t.closed {
		return ErrTransformReleased
	}
	t.closed = true
	t.in.release()
	t.out.release()
	t.provider.live--
	return nil
}

// ProjProvider is the built-in TransformProvider, backed by the orb/project
// spherical projections. It recognizes WGS84 geographic coordinates
// (EPSG:4326) and Web Mercator (EPSG:3857) in authority-code or WKT-like
// descriptor form.
type ProjProvider struct {
	live int
}

// NewProjProvider creates a provider with no live resources.
func NewProjProvider() *ProjProvider { return &ProjProvider{} }

// Live returns the number of currently held CRS and transform resources.
// It drops back to zero once every acquired transform is closed, including
// after an Acquire that failed partway through.
func (p *ProjProvider) Live() int { return p.live }

// Acquire resolves both descriptors in their compound-OK form and constructs
// the point transform. Either resolution failing, or the pair being
// unsupported, is an error carrying the backend diagnostic and the offending
// descriptor; resources resolved before the failing step are released.
func (p *ProjProvider) Acquire(in, out SpatialReference) (*Transform, error) {
	inHandle, err := p.resolve(in)
	if err != nil {
		return nil, err
	}
	outHandle, err := p.resolve(out)
	if err != nil {
		inHandle.release()
		return nil, err
	}
	t, err := p.newTransform(inHandle, outHandle)
	if err != nil {
		inHandle.release()
		outHandle.release()
		return nil, err
	}
	return t, nil
}

func (p *ProjProvider) resolve(s SpatialReference) (*crsHandle, error) {
	descriptor := s.WKT(WKTCompoundOK)
	if s.Empty() {
		return nil, &AcquireError{Diagnostic: "empty spatial reference"}
	}
	kind, ok := classifyCRS(descriptor)
	if !ok {
		return nil, &AcquireError{
			Descriptor: descriptor,
			Diagnostic: "unrecognized coordinate reference system",
		}
	}
	p.live++
	return &crsHandle{kind: kind, provider: p}, nil
}

func (p *ProjProvider) newTransform(in, out *crsHandle) (*Transform, error) {
	// Every pair over the closed kind set is supported, including identity.
	p.live++
	return &Transform{in: in, out: out, provider: p}, nil
}

// classifyCRS maps a textual descriptor onto the provider's closed CRS set.
func classifyCRS(descriptor string) (crsKind, bool) {
	d := strings.ToLower(descriptor)
	// Mercator first: its WKT names the WGS 84 datum and would otherwise
	// match the geographic patterns.
	switch {
	case strings.Contains(d, "3857"),
		strings.Contains(d, "900913"),
		strings.Contains(d, "pseudo-mercator"),
		strings.Contains(d, "web mercator"):
		return crsWebMercator, true
	case strings.Contains(d, "4326"),
		strings.Contains(d, "wgs84"),
		strings.Contains(d, `geogcs["wgs 84"`):
		return crsGeographicWGS84, true
	default:
		return 0, false
	}
}

// EPSGCode maps a spatial reference onto its EPSG code when the built-in
// provider recognizes it. Used by sinks that record CRS identity in output
// metadata.
func EPSGCode(s SpatialReference) (int, bool) {
	kind, ok := classifyCRS(s.WKT(WKTCompoundOK))
	if !ok {
		return 0, false
	}
	switch kind {
	case crsGeographicWGS84:
		return 4326, true
	case crsWebMercator:
		return 3857, true
	default:
		return 0, false
	}
}
