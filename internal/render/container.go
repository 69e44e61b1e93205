package render

import "sync"

// Container is an output region that receives artifacts.
type Container interface {
	Clear()
	Append(Artifact)
}

// Buffer is an in-memory Container.
type Buffer struct {
	mu        sync.Mutex
	artifacts []Artifact
	clears    int
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.artifacts = nil
	b.clears++
}

func (b *Buffer) Append(a Artifact) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.artifacts = append(b.artifacts, a)
}

// Artifacts returns a copy of the buffered artifacts in append order.
func (b *Buffer) Artifacts() []Artifact {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Artifact, len(b.artifacts))
	copy(out, b.artifacts)
	return out
}

// Clears counts how many times the buffer has been cleared.
func (b *Buffer) Clears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

func (b *Buffer) Tables() []*Table {
	var out []*Table
	for _, a := range b.Artifacts() {
		if t, ok := a.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

func (b *Buffer) Charts() []*Chart {
	var out []*Chart
	for _, a := range b.Artifacts() {
		if c, ok := a.(*Chart); ok {
			out = append(out, c)
		}
	}
	return out
}
