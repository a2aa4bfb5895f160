package compiler

import "cfront/pkg/diag"

// LiteralQueue carries raw character/string literal text from the lexer to
// the parser. Entries are popped in exactly the order they were pushed.
type LiteralQueue struct {
	items []string
	head  int
}

// Push appends a raw lexeme.
func (q *LiteralQueue) Push(raw string) {
	q.items = append(q.items, raw)
}

// Pop removes and returns the oldest entry. Popping an empty queue is an
// invariant violation.
func (q *LiteralQueue) Pop() string {
	diag.Assert(q.head < len(q.items), "literal queue not empty")
	s := q.items[q.head]
	q.items[q.head] = ""
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 32 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return s
}

// Len reports the number of pending entries.
func (q *LiteralQueue) Len() int { return len(q.items) - q.head }
