// Package pool provides a chunked arena that owns every node of one type
// allocated during a pass. Nodes never move once added, so pointers handed
// out by Add stay valid until the owning pool (or the pool it was merged
// into) is cleared.
package pool

import (
	"iter"

	"cfront/pkg/diag"
)

const chunkSize = 64

type chunk[T any] struct {
	items []T
	next  *chunk[T]
}

// Pool owns nodes of type T. The zero value is an empty pool ready for use.
type Pool[T any] struct {
	head  *chunk[T]
	tail  *chunk[T]
	count int
}

// Add copies v into the pool and returns a pointer to the owned node.
func (p *Pool[T]) Add(v T) *T {
	if p.tail == nil || len(p.tail.items) == cap(p.tail.items) {
		c := &chunk[T]{items: make([]T, 0, chunkSize)}
		if p.tail == nil {
			p.head = c
		} else {
			p.tail.next = c
		}
		p.tail = c
	}
	p.tail.items = append(p.tail.items, v)
	p.count++
	return &p.tail.items[len(p.tail.items)-1]
}

// Len reports how many nodes the pool owns.
func (p *Pool[T]) Len() int { return p.count }

// Clear releases every owned node. Pointers previously returned by Add
// must not be used afterwards.
func (p *Pool[T]) Clear() {
	for c := p.head; c != nil; c = c.next {
		clear(c.items)
	}
	p.head, p.tail, p.count = nil, nil, 0
}

// Merge moves every node owned by other into p and leaves other empty.
// Chunks are spliced, so the cost does not depend on the node count.
func (p *Pool[T]) Merge(other *Pool[T]) {
	diag.Assert(p != other, "p != other")
	if other.head == nil {
		return
	}
	if p.tail == nil {
		p.head = other.head
	} else {
		p.tail.next = other.head
	}
	p.tail = other.tail
	p.count += other.count
	other.head, other.tail, other.count = nil, nil, 0
}

// All yields every owned node in insertion order.
func (p *Pool[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for c := p.head; c != nil; c = c.next {
			for i := range c.items {
				if !yield(&c.items[i]) {
					return
				}
			}
		}
	}
}
