// Package contextstore keeps the per-sender record linking a delivered
// analysis to its author so a later "sí"/"no" reply can be attributed to it.
// One entry per sender at most; a new analysis overwrites the old one.
package contextstore

import "sync"

// InteractionContext is the pending-feedback record stored after an analysis
// response has been delivered.
type InteractionContext struct {
	OriginalMessage string
	AnalysisSummary string
}

// Store maps sender IDs to their outstanding interaction context. All methods
// are safe for concurrent use from the router and any number of pipelines.
type Store struct {
	mu      sync.Mutex
	entries map[string]InteractionContext
}

func New() *Store {
	return &Store{entries: make(map[string]InteractionContext)}
}

// Put stores the context for senderID, overwriting any existing entry.
func (s *Store) Put(senderID string, ctx InteractionContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[senderID] = ctx
}

// Get returns the context for senderID without removing it.
func (s *Store) Get(senderID string) (InteractionContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.entries[senderID]
	return ctx, ok
}

// Take atomically removes and returns the context for senderID. A context is
// handed out at most once even when feedback replies race.
func (s *Store) Take(senderID string) (InteractionContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.entries[senderID]
	if ok {
		delete(s.entries, senderID)
	}
	return ctx, ok
}

// Len reports how many senders currently have an unanswered feedback prompt.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
