// Package session memoizes the connection to the remote Q&A service.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/cexll/repoqa/internal/gradio"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client is the connected remote service.
type Client interface {
	Predict(ctx context.Context, endpoint string, params map[string]any) (*gradio.Response, error)
}

// ConnectFunc establishes a new Client.
type ConnectFunc func(ctx context.Context) (Client, error)

// State is the connection lifecycle.
type State int

const (
	Uninitialized State = iota
	Connecting
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session creates its Client on first use and reuses it afterwards.
// Concurrent callers during the first connect share that single attempt.
type Session struct {
	connect ConnectFunc
	logger  *zap.Logger

	group singleflight.Group

	mu     sync.Mutex
	state  State
	client Client
}

// New creates a Session that connects with connect.
func New(connect ConnectFunc, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{connect: connect, logger: logger}
}

// Gradio returns a ConnectFunc for a Gradio app or Space.
func Gradio(space string, opts ...gradio.Option) ConnectFunc {
	return func(ctx context.Context) (Client, error) {
		c, err := gradio.Connect(ctx, space, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Client returns the connected Client, connecting if needed. The connection
// attempt outlives ctx; ctx only bounds how long this caller waits for it.
func (s *Session) Client(ctx context.Context) (Client, error) {
	s.mu.Lock()
	if s.state == Ready {
		c := s.client
		s.mu.Unlock()
		return c, nil
	}
	s.state = Connecting
	s.mu.Unlock()

	ch := s.group.DoChan("connect", func() (any, error) {
		return s.dial(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Client), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) dial(ctx context.Context) (Client, error) {
	// A caller that lost the race to an attempt which just settled lands
	// here after the handle is cached.
	s.mu.Lock()
	if s.state == Ready {
		c := s.client
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	s.logger.Info("Connecting to remote service")
	c, err := s.connect(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Uninitialized
		s.logger.Warn("Remote connection failed", zap.Error(err))
		return nil, err
	}
	s.client = c
	s.state = Ready
	return c, nil
}
