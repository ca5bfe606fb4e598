package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jjenkins/trialfinder/internal/model"
)

const defaultSessionTTL = 30 * time.Minute

// RowKey identifies a result row within a session's last search
type RowKey struct {
	Source model.Source
	Index  int
}

// RowTranslations caches on-demand plain-Japanese row translations for
// one search result
type RowTranslations struct {
	mu   sync.RWMutex
	rows map[RowKey]model.RowTranslation
}

// NewRowTranslations creates an empty RowTranslations
func NewRowTranslations() *RowTranslations {
	return &RowTranslations{rows: make(map[RowKey]model.RowTranslation)}
}

// Get returns the cached translation for a row
func (r *RowTranslations) Get(source model.Source, index int) (model.RowTranslation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.rows[RowKey{Source: source, Index: index}]
	return t, ok
}

// Set caches the translation for a row
func (r *RowTranslations) Set(source model.Source, index int, t model.RowTranslation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[RowKey{Source: source, Index: index}] = t
}

// Len returns the number of cached rows
func (r *RowTranslations) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// Session holds one browser's last search result together with the row
// translations for that result. The two are always replaced as a pair.
type Session struct {
	ID string

	mu       sync.RWMutex
	result   *model.SearchResult
	rows     *RowTranslations
	lastSeen time.Time
}

// Result returns the last search result, or nil
func (s *Session) Result() *model.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Rows returns the row translations for the current result
func (s *Session) Rows() *RowTranslations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Snapshot returns the current result and the row translations that belong
// to it. Writes to the returned rows never reach a later result.
func (s *Session) Snapshot() (*model.SearchResult, *RowTranslations) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.rows
}

// SetResult replaces the last search result and starts an empty set of row
// translations for it, returning that set
func (s *Session) SetResult(r *model.SearchResult) *RowTranslations {
	rows := NewRowTranslations()
	s.mu.Lock()
	s.result = r
	s.rows = rows
	s.mu.Unlock()
	return rows
}

// SessionStore keeps sessions in memory and expires idle ones
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a SessionStore with the given idle TTL
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a live session and refreshes its idle timer
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// Create starts a new session with a random ID
func (s *SessionStore) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:       uuid.NewString(),
		rows:     NewRowTranslations(),
		lastSeen: s.now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

// GetOrCreate returns the session for id, creating one if it is unknown or expired
func (s *SessionStore) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Sweep removes idle sessions and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// TTL returns the idle timeout
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Len returns the number of tracked sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
