package pointpipe

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Options is a generic key/value configuration map with typed retrieval.
// Stages document the keys they consume; unrecognized keys are ignored.
type Options map[string]any

// OptionsFromYAML parses a YAML mapping into Options.
func OptionsFromYAML(data []byte) (Options, error) {
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("pointpipe: parse options: %w", err)
	}
	if o == nil {
		o = Options{}
	}
	return o, nil
}

// Has reports whether the key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns a string-valued option.
func (o Options) String(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingOption, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("pointpipe: option %q: want string, have %T", key, v)
	}
	return s, nil
}

// Int returns an integer-valued option. YAML numbers arrive as int or
// float64 depending on the decoder; both are accepted when exact.
func (o Options) Int(key string) (int, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingOption, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("pointpipe: option %q: %v is not an integer", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("pointpipe: option %q: want integer, have %T", key, v)
	}
}

// Bounds returns a bounds-valued option: either a Bounds value or a sequence
// of six numbers (minX, minY, minZ, maxX, maxY, maxZ).
func (o Options) Bounds(key string) (Bounds, error) {
	v, ok := o[key]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", ErrMissingOption, key)
	}
	switch b := v.(type) {
	case Bounds:
		return b, nil
	case []float64:
		return boundsFromSlice(key, b)
	case []any:
		vals := make([]float64, 0, len(b))
		for _, e := range b {
			f, err := toFloat(e)
			if err != nil {
				return Bounds{}, fmt.Errorf("pointpipe: option %q: %w", key, err)
			}
			vals = append(vals, f)
		}
		return boundsFromSlice(key, vals)
	default:
		return Bounds{}, fmt.Errorf("pointpipe: option %q: want bounds, have %T", key, v)
	}
}

// SpatialReference returns a spatial-reference-valued option: either a
// SpatialReference value or its textual descriptor.
func (o Options) SpatialReference(key string) (SpatialReference, error) {
	v, ok := o[key]
	if !ok {
		return SpatialReference{}, fmt.Errorf("%w: %q", ErrMissingOption, key)
	}
	switch s := v.(type) {
	case SpatialReference:
		return s, nil
	case string:
		return NewSpatialReference(s), nil
	default:
		return SpatialReference{}, fmt.Errorf("pointpipe: option %q: want spatial reference, have %T", key, v)
	}
}

func boundsFromSlice(key string, vals []float64) (Bounds, error) {
	if len(vals) != 6 {
		return Bounds{}, fmt.Errorf("pointpipe: option %q: want 6 bounds values, have %d", key, len(vals))
	}
	return NewBounds(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("want number, have %T", v)
	}
}
