// Package pointpipe provides the streaming core of a point-cloud processing
// pipeline: schema-described point buffers exchanged between composable
// stages (readers and filters) through pull-based iterators.
//
// A pipeline is built by chaining stages upstream-to-downstream. Calling
// Initialize on the terminal stage's chain propagates schema, bounds and
// spatial reference downstream, then an iterator created from any stage is
// pulled by the caller in a read loop.
package pointpipe

import (
	"errors"
	"fmt"
)

// Common errors returned by this package.
var (
	ErrNotInitialized      = errors.New("pointpipe: stage not initialized")
	ErrAlreadyInitialized  = errors.New("pointpipe: stage already initialized")
	ErrNoUpstream          = errors.New("pointpipe: filter has no upstream stage")
	ErrUnsupportedIterator = errors.New("pointpipe: iterator kind not supported by stage")
	ErrDuplicateDimension  = errors.New("pointpipe: duplicate dimension id in schema")
	ErrMissingOption       = errors.New("pointpipe: required option missing")
	ErrTransformReleased   = errors.New("pointpipe: transform already released")
)

// ImpedanceError reports that a stage's inherited schema lacks a dimension
// the stage requires, or carries it with the wrong declared type. It is
// returned from Initialize and aborts pipeline construction.
type ImpedanceError struct {
	Stage       string // stage name, e.g. "filters.reprojection"
	Requirement string // human-readable description of the unmet requirement
}

func (e *ImpedanceError) Error() string {
	return fmt.Sprintf("pointpipe: %s: schema impedance: %s", e.Stage, e.Requirement)
}

// AcquireError reports that the CRS backend could not resolve a spatial
// reference descriptor or could not construct the requested transform.
type AcquireError struct {
	Descriptor string // the offending descriptor, if any
	Diagnostic string // backend diagnostic text
}

func (e *AcquireError) Error() string {
	if e.Descriptor == "" {
		return fmt.Sprintf("pointpipe: acquire transform: %s", e.Diagnostic)
	}
	return fmt.Sprintf("pointpipe: acquire transform: %s (descriptor %q)", e.Diagnostic, e.Descriptor)
}

// TransformError reports a per-point coordinate transform failure. It carries
// the pre-transform coordinates for context. During buffer processing it is
// fatal to the in-progress read.
type TransformError struct {
	X, Y, Z    float64 // coordinates before the failed transform
	Diagnostic string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("pointpipe: transform point (%g, %g, %g): %s", e.X, e.Y, e.Z, e.Diagnostic)
}
