// Package runstore keeps an in-memory history of Q&A runs for the UI.
package runstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// DefaultCapacity bounds how many runs are kept.
const DefaultCapacity = 50

type Run struct {
	ID        string
	RepoURL   string
	Questions int
	Status    RunStatus
	Error     string
	Pairs     int
	CreatedAt time.Time
	UpdatedAt time.Time
	Logs      []LogEntry
}

type LogEntry struct {
	Timestamp time.Time
	Level     string // info, error, success
	Message   string
}

type Store struct {
	mu       sync.RWMutex
	runs     map[string]*Run
	capacity int
}

func NewStore() *Store {
	return NewStoreWithCapacity(DefaultCapacity)
}

func NewStoreWithCapacity(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		runs:     make(map[string]*Run),
		capacity: capacity,
	}
}

// Create records a pending run and returns its ID.
func (s *Store) Create(repoURL string, questions int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	run := &Run{
		ID:        uuid.NewString(),
		RepoURL:   repoURL,
		Questions: questions,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.runs[run.ID] = run
	s.evictLocked()
	return run.ID
}

// Get returns a copy of the run.
func (s *Store) Get(id string) (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return Run{}, false
	}
	return cloneRun(run), true
}

// List returns copies of all runs, newest first.
func (s *Store) List() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

func (s *Store) UpdateStatus(id string, status RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = status
		run.UpdatedAt = time.Now()
	}
}

// Complete marks the run completed with the number of Q&A pairs produced.
func (s *Store) Complete(id string, pairs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = StatusCompleted
		run.Pairs = pairs
		run.UpdatedAt = time.Now()
	}
}

// Fail marks the run failed with msg.
func (s *Store) Fail(id string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = StatusFailed
		run.Error = msg
		run.UpdatedAt = time.Now()
	}
}

func (s *Store) AddLog(id string, level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Logs = append(run.Logs, LogEntry{
			Timestamp: time.Now(),
			Level:     level,
			Message:   message,
		})
		run.UpdatedAt = time.Now()
	}
}

func (s *Store) evictLocked() {
	for len(s.runs) > s.capacity {
		var oldest *Run
		for _, run := range s.runs {
			if oldest == nil || run.CreatedAt.Before(oldest.CreatedAt) {
				oldest = run
			}
		}
		delete(s.runs, oldest.ID)
	}
}

func cloneRun(run *Run) Run {
	out := *run
	out.Logs = append([]LogEntry(nil), run.Logs...)
	return out
}
