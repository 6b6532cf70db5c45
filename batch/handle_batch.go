package batch

import "github.com/opendz/bus1/handle"

// HandleBatch collects the handles a single multi-destination send carries,
// one per id the sender requested (nil for an id that resolved to nothing),
// so the caller can release them together once every destination's Inflight
// has run (spec.md §4.3).
type HandleBatch struct {
	list *List[*handle.Handle]
}

// NewHandleBatch creates an empty batch.
func NewHandleBatch() *HandleBatch {
	return &HandleBatch{list: New[*handle.Handle]()}
}

// Add appends h to the batch.
func (b *HandleBatch) Add(h *handle.Handle) {
	b.list.Append(h)
}

// Len returns the number of handles collected.
func (b *HandleBatch) Len() int { return b.list.Len() }

// At returns the i-th handle.
func (b *HandleBatch) At(i int) *handle.Handle { return b.list.At(i) }

// ForEach visits every handle in the batch.
func (b *HandleBatch) ForEach(fn func(int, *handle.Handle)) { b.list.ForEach(fn) }

// Destroy discards every handle in the batch that never made it onto a
// destination (the losing side of an install conflict): anything still
// private when the batch is torn down would otherwise leak its initial
// reference.
func (b *HandleBatch) Destroy() {
	b.list.ForEach(func(_ int, h *handle.Handle) {
		if h != nil {
			h.DiscardPrivate()
		}
	})
}
