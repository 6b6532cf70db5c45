// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"io"
)

// Flusher is any type that can be flushed.
type Flusher interface {
	Flush() error
}

type FlushAndCloser interface {
	Flusher
	io.Closer
}

// MemoryFootprintProvider is implemented by structures willing to report
// their own memory consumption, recursively, as a MemoryFootprint tree.
type MemoryFootprintProvider interface {
	GetMemoryFootprint() *MemoryFootprint
}

// Iterator is an interface for standard iterator
type Iterator[K any] interface {

	//HasNext returns true if there is still at least one more item in the underlying collection.
	HasNext() bool

	//Next returns a next element in the input collection.
	Next() K
}
