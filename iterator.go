package pointpipe

// IteratorKind distinguishes the two iterator contracts a stage may support.
type IteratorKind int

const (
	IteratorSequential IteratorKind = iota
	IteratorRandom
)

func (k IteratorKind) String() string {
	switch k {
	case IteratorSequential:
		return "sequential"
	case IteratorRandom:
		return "random"
	default:
		return "unknown"
	}
}

// SequentialIterator delivers up to Capacity points per call into a
// caller-owned buffer, advancing an internal cursor that starts at 0.
//
// Read sets buf.Count to the number of points written and returns it. A
// return of fewer points than the buffer's capacity signals end of stream;
// every subsequent call returns 0 with a nil error. Iterators own nothing
// beyond their cursor and a non-owning reference to their source stage, so
// multiple iterators over one stage never interfere.
type SequentialIterator interface {
	Read(buf *Buffer) (int, error)
}

// RandomIterator adds absolute repositioning to the sequential contract.
//
// Seek positions the cursor at a zero-based global point index and returns
// the new cursor; the next Read begins exactly there. Per-point values are
// functions of the global index, so a Seek followed by a Read yields the
// same points a continuous sequential scan would have produced at that
// position.
type RandomIterator interface {
	SequentialIterator
	Seek(position uint64) (uint64, error)
}
