package app

import "sync"

// Buffer accumulates discarded bytes until the next drain.
// Append and Drain exclude each other, so an append is seen whole by
// exactly one drain.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append copies p onto the end of the buffer.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	b.data = append(b.data, p...)
	b.mu.Unlock()
}

// Drain returns everything appended since the last drain and empties the
// buffer in the same critical section. Returns nil when empty.
func (b *Buffer) Drain() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) == 0 {
		return nil
	}
	out := b.data
	b.data = nil
	return out
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
