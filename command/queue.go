// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

// Queue is an append-only FIFO of commands for one render pass. It is
// drained and reset once per frame.
//
// The zero value is an empty queue ready to use.
type Queue struct {
	cmds []Command
}

// Push appends commands in order. Nil commands are dropped.
func (q *Queue) Push(cmds ...Command) {
	for _, c := range cmds {
		if c != nil {
			q.cmds = append(q.cmds, c)
		}
	}
}

// Commands returns the queued commands in push order. The slice is only
// valid until the next Push or Reset.
func (q *Queue) Commands() []Command { return q.cmds }

// Len returns the number of queued commands.
func (q *Queue) Len() int { return len(q.cmds) }

// Reset empties the queue, keeping its storage.
func (q *Queue) Reset() {
	clear(q.cmds)
	q.cmds = q.cmds[:0]
}

// CountKind returns the number of queued commands of kind k.
func (q *Queue) CountKind(k Kind) int {
	n := 0
	for _, c := range q.cmds {
		if c.Kind() == k {
			n++
		}
	}
	return n
}
