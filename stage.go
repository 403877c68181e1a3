package pointpipe

import "fmt"

// Stage is a pipeline node that produces or transforms a stream of points.
// Initialize must be called exactly once before any metadata accessor or
// iterator factory is used; the derived metadata is immutable afterwards.
type Stage interface {
	// Initialize derives the stage's schema, bounds and spatial reference,
	// performing impedance checks against the upstream stage for filters.
	Initialize() error

	// Name is the stage's registry-style identifier, e.g. "readers.faux".
	Name() string
	// Description is a human-readable stage description.
	Description() string

	// Schema returns the stage's (possibly derived) schema.
	Schema() (*Schema, error)
	// Bounds returns the stage's (possibly derived) bounds.
	Bounds() (Bounds, error)
	// SpatialReference returns the stage's spatial reference.
	SpatialReference() (SpatialReference, error)

	// SupportsIterator reports whether the stage can produce the given
	// iterator kind. Query it before calling the factory.
	SupportsIterator(kind IteratorKind) bool
	// SequentialIterator creates a new sequential iterator bound to this
	// stage, with its cursor at 0.
	SequentialIterator() (SequentialIterator, error)
	// RandomIterator creates a new random-access iterator bound to this
	// stage, with its cursor at 0.
	RandomIterator() (RandomIterator, error)
}

// stageCore carries the metadata every stage owns and the initialization
// guard. Concrete stages embed it and fill the fields during Initialize.
type stageCore struct {
	name        string
	description string
	initialized bool

	schema *Schema
	bounds Bounds
	srs    SpatialReference
}

func (c *stageCore) Name() string        { return c.name }
func (c *stageCore) Description() string { return c.description }

// requireInit reports the precondition failure for use before Initialize.
func (c *stageCore) requireInit() error {
	if !c.initialized {
		return fmt.Errorf("%s: %w", c.name, ErrNotInitialized)
	}
	return nil
}

// beginInit guards against double initialization.
func (c *stageCore) beginInit() error {
	if c.initialized {
		return fmt.Errorf("%s: %w", c.name, ErrAlreadyInitialized)
	}
	return nil
}

func (c *stageCore) Schema() (*Schema, error) {
	if err := c.requireInit(); err != nil {
		return nil, err
	}
	return c.schema, nil
}

func (c *stageCore) Bounds() (Bounds, error) {
	if err := c.requireInit(); err != nil {
		return Bounds{}, err
	}
	return c.bounds, nil
}

func (c *stageCore) SpatialReference() (SpatialReference, error) {
	if err := c.requireInit(); err != nil {
		return SpatialReference{}, err
	}
	return c.srs, nil
}

// filterCore extends stageCore with the single, non-owning upstream stage
// every filter holds. The upstream stage's lifetime must exceed the
// filter's; a filter never owns its downstream consumers.
type filterCore struct {
	stageCore
	upstream Stage
}

// initBase validates the upstream stage and adopts its metadata as this
// stage's defaults. The upstream must itself be initialized: its metadata
// accessors fail otherwise and the error propagates.
func (f *filterCore) initBase() error {
	if err := f.beginInit(); err != nil {
		return err
	}
	if f.upstream == nil {
		return fmt.Errorf("%s: %w", f.name, ErrNoUpstream)
	}
	schema, err := f.upstream.Schema()
	if err != nil {
		return fmt.Errorf("%s: upstream: %w", f.name, err)
	}
	bounds, err := f.upstream.Bounds()
	if err != nil {
		return fmt.Errorf("%s: upstream: %w", f.name, err)
	}
	srs, err := f.upstream.SpatialReference()
	if err != nil {
		return fmt.Errorf("%s: upstream: %w", f.name, err)
	}
	f.schema = schema
	f.bounds = bounds
	f.srs = srs
	return nil
}

// Upstream returns the stage this filter pulls from.
func (f *filterCore) Upstream() Stage { return f.upstream }
