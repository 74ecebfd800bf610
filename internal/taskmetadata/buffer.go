/*
Package taskmetadata holds the grow-only, coalescing map of task-attempt
metadata that accompanies the next control-plane publish. It is a side
channel filled at ingress alongside EventBuffer.Append and drained
atomically right before the control-plane publisher serializes a batch.
*/
package taskmetadata

import (
	"sync"

	"github.com/cuemby/ray-aggregator/internal/model"
)

// Buffer coalesces task-attempt metadata records, keyed by attempt id, with
// later merges winning on key collision. It has its own mutex and is never
// nested under the EventBuffer's.
type Buffer struct {
	mu   sync.Mutex
	data map[model.TaskAttemptID]*model.TaskMetadata
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{data: make(map[model.TaskAttemptID]*model.TaskMetadata)}
}

// Merge unions block into the current map. Entries in block overwrite any
// existing entry with the same attempt id.
func (b *Buffer) Merge(block map[model.TaskAttemptID]*model.TaskMetadata) {
	if len(block) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, md := range block {
		b.data[id] = md
	}
}

// Drain atomically returns the current map and resets the buffer to empty.
func (b *Buffer) Drain() map[model.TaskAttemptID]*model.TaskMetadata {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	out := b.data
	b.data = make(map[model.TaskAttemptID]*model.TaskMetadata)
	return out
}

// Len reports the number of distinct task attempts currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
