package filterstate

import (
	"net/url"
	"sync"
)

// HistoryMode chooses between adding and rewriting a history entry.
type HistoryMode int

const (
	// Replace rewrites the current entry (passive reconciliation, initial load).
	Replace HistoryMode = iota
	// Push adds an entry (user actions).
	Push
)

func (m HistoryMode) String() string {
	if m == Push {
		return "push"
	}
	return "replace"
}

// History is the browser session history seen by the synchronizer.
type History interface {
	Location() *url.URL
	Push(u *url.URL)
	Replace(u *url.URL)
}

// MemoryHistory is an in-process History with back/forward navigation.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []*url.URL
	index   int
}

// NewMemoryHistory starts a history at start.
func NewMemoryHistory(start *url.URL) *MemoryHistory {
	u := *start
	return &MemoryHistory{entries: []*url.URL{&u}}
}

// Location returns a copy of the current entry.
func (h *MemoryHistory) Location() *url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	u := *h.entries[h.index]
	return &u
}

// Push drops forward entries and appends u.
func (h *MemoryHistory) Push(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := *u
	h.entries = append(h.entries[:h.index+1], &c)
	h.index++
}

// Replace overwrites the current entry.
func (h *MemoryHistory) Replace(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := *u
	h.entries[h.index] = &c
}

// Back moves one entry back. It reports false at the start of history.
func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Forward moves one entry forward.
func (h *MemoryHistory) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
