// Package session keeps bounded per-session conversation history in
// memory. History exists to give the model short-term context, not to be
// a transcript: only the most recent exchanges are retained.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Store holds conversation history keyed by session id. Safe for
// concurrent use. Each session keeps at most maxExchanges user/assistant
// pairs; older turns are dropped.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string][]Turn
	maxExchanges int
}

// NewStore creates a session store keeping the given number of exchanges
// per session. maxExchanges <= 0 defaults to 2.
func NewStore(maxExchanges int) *Store {
	if maxExchanges <= 0 {
		maxExchanges = 2
	}
	return &Store{
		sessions:     make(map[string][]Turn),
		maxExchanges: maxExchanges,
	}
}

// NewSessionID generates a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Append adds a turn to the session, creating it on first use, and drops
// the oldest turns beyond the retention bound.
func (s *Store) Append(sessionID, role, content string) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], Turn{Role: role, Content: content})
	if max := s.maxExchanges * 2; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	s.sessions[sessionID] = turns
}

// History returns the retained turns for a session, oldest first. Unknown
// sessions yield an empty history. The returned slice is a copy.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	if len(turns) == 0 {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes a session's history.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
