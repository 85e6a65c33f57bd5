// Package status holds what the user currently sees: the status line, the
// busy indicator, the error line and the last successful output.
package status

import (
	"html/template"
	"sync"
	"time"

	"github.com/cexll/repoqa/internal/github"
)

// Output is a successful result as displayed.
type Output struct {
	HTML template.HTML    `json:"html"`
	Text string           `json:"text"`
	Raw  string           `json:"raw"`
	Repo *github.RepoCard `json:"repo,omitempty"`
}

// Snapshot is a copy of the board.
type Snapshot struct {
	Status string  `json:"status"`
	Busy   bool    `json:"busy"`
	Error  string  `json:"error,omitempty"`
	Output *Output `json:"output,omitempty"`
}

// Board is safe for concurrent use. Listeners run synchronously after each
// change, outside the lock.
type Board struct {
	mu        sync.Mutex
	snap      Snapshot
	listeners []func(Snapshot)
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Subscribe registers fn for change notifications.
func (b *Board) Subscribe(fn func(Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Snapshot returns the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyLocked()
}

// Begin enters the busy state with the given status.
func (b *Board) Begin(status string) {
	b.update(func(s *Snapshot) {
		s.Busy = true
		s.Status = status
	})
}

// SetStatus replaces the status line.
func (b *Board) SetStatus(status string) {
	b.update(func(s *Snapshot) { s.Status = status })
}

// SetError replaces the error line. An empty msg clears it.
func (b *Board) SetError(msg string) {
	b.update(func(s *Snapshot) { s.Error = msg })
}

// Succeed replaces the output.
func (b *Board) Succeed(out Output) {
	b.update(func(s *Snapshot) { s.Output = &out })
}

// AttachRepo adds card to the output, provided the output is still the one
// built from raw.
func (b *Board) AttachRepo(raw string, card *github.RepoCard) {
	b.mu.Lock()
	if b.snap.Output == nil || b.snap.Output.Raw != raw {
		b.mu.Unlock()
		return
	}
	out := *b.snap.Output
	out.Repo = card
	b.snap.Output = &out
	snap, listeners := b.copyLocked(), b.listeners
	b.mu.Unlock()
	notify(listeners, snap)
}

// End leaves the busy state and sets the final status line.
func (b *Board) End(status string) {
	b.update(func(s *Snapshot) {
		s.Busy = false
		s.Status = status
	})
}

// Clear drops the output, the error and the status line.
func (b *Board) Clear() {
	b.update(func(s *Snapshot) {
		s.Output = nil
		s.Error = ""
		s.Status = ""
	})
}

// Flash shows msg for d, then clears the status line if nothing replaced it.
func (b *Board) Flash(msg string, d time.Duration) {
	b.SetStatus(msg)
	time.AfterFunc(d, func() {
		cleared := false
		b.mu.Lock()
		if b.snap.Status == msg {
			b.snap.Status = ""
			cleared = true
		}
		snap, listeners := b.copyLocked(), b.listeners
		b.mu.Unlock()
		if cleared {
			notify(listeners, snap)
		}
	})
}

func (b *Board) update(fn func(*Snapshot)) {
	b.mu.Lock()
	fn(&b.snap)
	snap, listeners := b.copyLocked(), b.listeners
	b.mu.Unlock()
	notify(listeners, snap)
}

func (b *Board) copyLocked() Snapshot {
	snap := b.snap
	if snap.Output != nil {
		out := *snap.Output
		snap.Output = &out
	}
	return snap
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
