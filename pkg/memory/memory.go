// Package memory provides per-session conversation storage. Sessions are
// created lazily on first access and live for the process lifetime; there is
// no eviction and no persistence.
package memory

import (
	"sort"
	"sync"

	"github.com/okonma/valet/pkg/chats/chat"
)

// Store maps opaque session identifiers to their conversation logs.
// The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	once     sync.Once
	sessions map[string]*chat.Chat
}

// init ensures internal structures are allocated.
func (s *Store) init() {
	s.once.Do(func() {
		s.sessions = make(map[string]*chat.Chat)
	})
}

// Session returns the conversation for id, creating and registering an empty
// one if it does not exist yet. It never fails.
func (s *Store) Session(id string) *chat.Chat {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[id]
	if !ok {
		c = chat.New()
		s.sessions[id] = c
	}
	return c
}

// Clear empties the conversation for id in place. It is a no-op if the
// session does not exist.
func (s *Store) Clear(id string) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.sessions[id]; ok {
		c.Clear()
	}
}

// Delete removes the session entirely. It is a no-op if the session does not
// exist.
func (s *Store) Delete(id string) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// IDs returns the identifiers of all known sessions in sorted order.
func (s *Store) IDs() []string {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
