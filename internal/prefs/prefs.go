// Package prefs remembers the last submitted repository URL and question
// count. Persistence is best-effort: every storage failure is swallowed.
package prefs

import "sync"

// Storage keys shared by every backend.
const (
	KeyURL       = "ghqa:url"
	KeyQuestions = "ghqa:n"
)

// Prefs holds restored preferences. Absent values are nil.
type Prefs struct {
	URL       *string
	Questions *int
}

// Store saves and restores preferences.
type Store interface {
	Save(url string, n int)
	Restore() Prefs
}

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	url   string
	n     int
	saved bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(url string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.url, m.n, m.saved = url, n, true
}

func (m *MemoryStore) Restore() Prefs {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return Prefs{}
	}
	return build(m.url, &m.n)
}

// build mirrors the browser behaviour: an empty URL counts as absent.
func build(url string, n *int) Prefs {
	var p Prefs
	if url != "" {
		u := url
		p.URL = &u
	}
	if n != nil {
		v := *n
		p.Questions = &v
	}
	return p
}
