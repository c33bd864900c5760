// Package audit keeps the per-session trail of drafts and critiques produced
// by refinement runs.
package audit

import "sync"

// Role identifies who produced a trail entry.
type Role string

// Trail entry roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one recorded trail item.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Trail is an append-only, capped record of pipeline intermediates for one
// session. When the cap is exceeded the oldest entries are dropped.
type Trail struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

// DefaultCap bounds trail growth for long-lived sessions.
const DefaultCap = 64

// NewTrail creates a trail holding at most capacity entries. A capacity of
// zero or less uses DefaultCap.
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Trail{cap: capacity}
}

// Append records an entry. It never fails; if the trail is full the oldest
// entry is evicted.
func (t *Trail) Append(role Role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Role: role, Content: content})
	if len(t.entries) > t.cap {
		t.entries = t.entries[len(t.entries)-t.cap:]
	}
}

// Snapshot returns a copy of the current entries, oldest first.
func (t *Trail) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries currently held.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
