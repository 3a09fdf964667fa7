package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/logging"
	"github.com/runpad/backend/internal/shared/utils"
	"go.uber.org/zap"
)

// Dispatcher forwards an execution request to the engine loader.
type Dispatcher interface {
	Dispatch(ctx context.Context, req engine.Request) (*engine.Result, error)
}

// Store is the single source of truth for the editable code buffer.
// One Store exists per application instance; it is constructed
// explicitly and handed to the surfaces that bind to it, never
// reached through package state.
type Store struct {
	mu   sync.RWMutex
	text string // The one CodeBuffer; always defined

	subsMu sync.Mutex
	subs   map[int]func(string)
	nextID int

	dispatcher Dispatcher
	logger     *logging.Logger
}

// Placeholder returns the initial blank buffer: ten line breaks, the
// editor's empty canvas.
func Placeholder() string {
	return strings.Join(utils.Fill(0, 9, "\n"), "")
}

// New creates a store with the placeholder buffer.
func New(dispatcher Dispatcher, logger *logging.Logger) *Store {
	return &Store{
		text:       Placeholder(),
		subs:       make(map[int]func(string)),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SetCode replaces the buffer unconditionally and notifies
// subscribers with the new text.
func (s *Store) SetCode(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	s.notify(text)
}

// Code returns the current buffer.
func (s *Store) Code() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Subscribe registers an observer called after every mutation. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(code string)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(text string) {
	s.subsMu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(text)
	}
}

// Run snapshots the current buffer and forwards it for execution.
// The snapshot is taken before any suspension point, so a run always
// sees the buffer as of the moment it was triggered, not as of load
// completion. Load and execution failures propagate to the caller;
// the buffer is never touched by a run.
func (s *Store) Run(ctx context.Context) (*engine.Result, error) {
	req := engine.Request{
		ID:          uuid.New().String(),
		Code:        s.Code(),
		SubmittedAt: time.Now(),
	}

	s.logger.Debug("run triggered",
		zap.String("request_id", req.ID),
		zap.Int("code_bytes", len(req.Code)))

	result, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		s.logger.Warn("run failed",
			zap.String("request_id", req.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("run completed",
		zap.String("request_id", req.ID),
		zap.Duration("duration", result.Duration))
	return result, nil
}
