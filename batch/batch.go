// Package batch implements a chunked, append-only list, grounded on the
// kernel's bus1_handle_batch (original_source/ipc/bus1/handle.c), which
// backs a single multi-destination send or receive with a bounded list of
// handle references without committing to one large contiguous allocation
// up front. No pack example carries a general chunked-list container, so
// this stays on a plain generic slice-of-arrays rather than a third-party
// data structure; see DESIGN.md.
package batch

import "github.com/opendz/bus1/common"

const chunkSize = 32

type chunk[T any] struct {
	items [chunkSize]T
	n     int
}

// List is a generic chunked container.
type List[T any] struct {
	chunks []*chunk[T]
	count  int
}

// New creates an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of appended items.
func (l *List[T]) Len() int { return l.count }

// Append adds v, growing a new chunk only once the last one fills up.
func (l *List[T]) Append(v T) {
	if len(l.chunks) == 0 || l.chunks[len(l.chunks)-1].n == chunkSize {
		l.chunks = append(l.chunks, &chunk[T]{})
	}
	c := l.chunks[len(l.chunks)-1]
	c.items[c.n] = v
	c.n++
	l.count++
}

// At returns the i-th appended item.
func (l *List[T]) At(i int) T {
	return l.chunks[i/chunkSize].items[i%chunkSize]
}

// ForEach visits every item in append order.
func (l *List[T]) ForEach(fn func(index int, v T)) {
	idx := 0
	for _, c := range l.chunks {
		for i := 0; i < c.n; i++ {
			fn(idx, c.items[i])
			idx++
		}
	}
}

// listIterator is a common.Iterator[T] over one List's items in append
// order, for callers that want to drive a manual loop (e.g. a send that
// stops partway through a batch on the first error) instead of ForEach's
// visit-everything callback.
type listIterator[T any] struct {
	list *List[T]
	next int
}

// Iterator returns a common.Iterator[T] positioned before the first item.
func (l *List[T]) Iterator() common.Iterator[T] {
	return &listIterator[T]{list: l}
}

func (it *listIterator[T]) HasNext() bool {
	return it.next < it.list.Len()
}

func (it *listIterator[T]) Next() T {
	v := it.list.At(it.next)
	it.next++
	return v
}
