package dashboard

import (
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/types"
)

// DefaultLogCapacity is the number of entries kept when no capacity is given.
// It is also the upper bound: a buffer never holds more.
const DefaultLogCapacity = 100

// LogBuffer is a bounded, append-only log. Once full, each append evicts
// exactly one entry from the head.
type LogBuffer struct {
	ring  []types.LogEntry
	head  int // index of the oldest entry
	count int

	hub Hub[[]types.LogEntry]
}

// NewLogBuffer creates a buffer holding at most capacity entries, clamped to
// DefaultLogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 || capacity > DefaultLogCapacity {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{ring: make([]types.LogEntry, capacity)}
}

// Append adds an entry at the tail.
func (b *LogBuffer) Append(timestamp string, level types.LogLevel, message string) {
	b.AppendEntry(types.LogEntry{Timestamp: timestamp, Level: level, Message: message})
}

// AppendEntry adds e at the tail, evicting the oldest entry when full.
func (b *LogBuffer) AppendEntry(e types.LogEntry) {
	capacity := len(b.ring)
	if b.count == capacity {
		b.ring[b.head] = e
		b.head = (b.head + 1) % capacity
		metrics.LogEvictionsTotal.Inc()
	} else {
		b.ring[(b.head+b.count)%capacity] = e
		b.count++
	}
	b.hub.Notify(b.Entries())
}

// Entries returns a copy of the buffer, oldest first.
func (b *LogBuffer) Entries() []types.LogEntry {
	out := make([]types.LogEntry, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	return out
}

// Len is the number of entries held.
func (b *LogBuffer) Len() int { return b.count }

// Cap is the maximum number of entries held.
func (b *LogBuffer) Cap() int { return len(b.ring) }

// Subscribe is notified with the full contents after every append.
func (b *LogBuffer) Subscribe(fn func([]types.LogEntry)) func() {
	return b.hub.Subscribe(fn)
}
