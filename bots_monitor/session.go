package bots_monitor

import (
	"sync"

	"memescout/internal/filter"
	"memescout/internal/token"
)

// Awaiting-input states: what the next plain text message from the chat
// will be treated as.
const (
	awaitingNothing      = ""
	awaitingFilterText   = "filter_text"
	awaitingTokenAddress = "token_address"
)

// Session is the per-chat conversation state: the filter being built, the
// last result set kept for pagination and details lookups, and what free
// text input the bot is waiting for.
type Session struct {
	Builder        filter.Predicate
	AwaitingInput  string
	LastResults    []token.Record
	LastPredicate  filter.Predicate
	LastFilterText string
	LastPage       int
}

// SetResults replaces the pagination snapshot after a finished search.
func (s *Session) SetResults(records []token.Record, p filter.Predicate, filterText string) {
	s.LastResults = records
	s.LastPredicate = p
	s.LastFilterText = filterText
	s.LastPage = 0
}

// FindResult returns the record with the given address from the snapshot.
func (s *Session) FindResult(address string) (token.Record, bool) {
	for _, rec := range s.LastResults {
		if rec.Address == address {
			return rec, true
		}
	}
	return token.Record{}, false
}

// SessionManager owns every chat session. Handlers run on the bot's single
// update goroutine, the lock only guards map access against the monitors.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessionManager returns an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[int64]*Session)}
}

// Get returns the session for a chat, creating it on first use.
func (m *SessionManager) Get(chatID int64) *Session {
	m.mu.RLock()
	s, ok := m.sessions[chatID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.sessions[chatID]; ok {
		return s
	}
	s = &Session{}
	m.sessions[chatID] = s
	return s
}

// Reset drops the session for a chat.
func (m *SessionManager) Reset(chatID int64) {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
}

// Len reports how many chats currently hold state.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
