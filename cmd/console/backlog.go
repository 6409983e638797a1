package main

import (
	"context"
	"sync"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
)

const maxBacklog = 500

type backlogEntry struct {
	speaker string
	text    string
	divider bool
}

// backlog keeps the lines already shown, for the backlog panel.
type backlog struct {
	mu      sync.Mutex
	entries []backlogEntry
}

var _ dialogue.Observer = (*backlog)(nil)

func (b *backlog) Publish(_ context.Context, e dialogue.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch e.Type {
	case dialogue.EventLineShown:
		b.entries = append(b.entries, backlogEntry{speaker: e.Speaker, text: e.Text})
	case dialogue.EventSessionEnded:
		b.entries = append(b.entries, backlogEntry{divider: true})
	}
	if over := len(b.entries) - maxBacklog; over > 0 {
		b.entries = b.entries[over:]
	}
	return nil
}

func (b *backlog) snapshot() []backlogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]backlogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}
