// Package session partitions per-user working state by session token: the
// audit trail of refinement runs and the brainstorm chat log.
package session

import (
	"sync"

	"github.com/google/uuid"

	"pmtoolkit/pkg/audit"
)

// Message is one brainstorm chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session holds the working state for one logged-in user session.
type Session struct {
	Token string
	Owner string
	Trail *audit.Trail

	mu   sync.Mutex
	chat []Message
}

// AppendChat records a brainstorm message in the session chat log.
func (s *Session) AppendChat(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, Message{Role: role, Content: content})
}

// ChatContext returns a copy of the most recent n chat messages, oldest first.
func (s *Session) ChatContext(n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if len(s.chat) > n {
		start = len(s.chat) - n
	}
	out := make([]Message, len(s.chat)-start)
	copy(out, s.chat[start:])
	return out
}

// Manager tracks live sessions by token.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	trailCap int
}

// NewManager creates a session manager whose trails hold at most trailCap
// entries each.
func NewManager(trailCap int) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		trailCap: trailCap,
	}
}

// Create starts a session for owner and returns it with a fresh token.
func (m *Manager) Create(owner string) *Session {
	s := &Session{
		Token: uuid.NewString(),
		Owner: owner,
		Trail: audit.NewTrail(m.trailCap),
	}
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Get resolves a session token.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

// Delete ends a session. Unknown tokens are ignored.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
