package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/loader"
	"github.com/runpad/backend/internal/logging"
	"github.com/runpad/backend/internal/shared/id"
	"go.uber.org/zap"
)

// Spawner instantiates an execution context for a module locator and
// returns its handle once ready. The handle satisfies engine.Engine,
// so a spawner slots in as the loader's resolver.
type Spawner interface {
	Spawn(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error)
}

// Direct runs the engine in-process on the caller's goroutine. Used
// where isolation is unnecessary, e.g. tests and embedded setups.
type Direct struct{}

// Spawn resolves the engine without any isolation layer.
func (Direct) Spawn(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error) {
	eng, err := loader.Resolve(ctx, locator, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrSpawn, err)
	}
	return eng, nil
}

// Config defines isolation behavior
type Config struct {
	// WallTimeout is the hard ceiling on a single run, beyond the
	// engine's own timeout. When exceeded the context is torn down
	// and replaced so a wedged run cannot block later ones.
	WallTimeout time.Duration

	// QueueSize bounds pending runs on a single context.
	QueueSize int
}

// DefaultConfig returns production isolation settings.
func DefaultConfig() Config {
	return Config{
		WallTimeout: 10 * time.Second,
		QueueSize:   16,
	}
}

// Isolated spawns execution contexts on dedicated goroutines with
// forced teardown of runaway runs.
type Isolated struct {
	config Config
	logger *logging.Logger
}

// NewIsolated creates an isolated spawner.
func NewIsolated(cfg Config, logger *logging.Logger) *Isolated {
	if cfg.WallTimeout <= 0 {
		cfg.WallTimeout = DefaultConfig().WallTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Isolated{config: cfg, logger: logger}
}

// Spawn resolves the engine and starts its dedicated run loop. It
// returns only once the engine reported ready (resolution finished).
func (s *Isolated) Spawn(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error) {
	inner, err := loader.Resolve(ctx, locator, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrSpawn, err)
	}

	h := &handle{
		spawner:   s,
		locator:   locator,
		engineCfg: cfg,
	}
	h.start(inner)

	s.logger.Info("isolated execution context ready",
		zap.String("engine_id", h.id().String()),
		zap.String("locator", locator),
		zap.Duration("wall_timeout", s.config.WallTimeout))

	return h, nil
}

// Resolver adapts the spawner to the loader's resolve hook.
func (s *Isolated) Resolver() loader.ResolveFunc {
	return func(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error) {
		return s.Spawn(ctx, locator, cfg)
	}
}

type runRequest struct {
	ctx   context.Context
	code  string
	reply chan runReply
}

type runReply struct {
	result *engine.Result
	err    error
}

// handle is an isolated execution endpoint. Runs are serialized on a
// dedicated goroutine owning the engine; a run that outlives the wall
// timeout is cancelled and its whole context replaced.
type handle struct {
	spawner   *Isolated
	locator   string
	engineCfg engine.Config

	mu       sync.Mutex
	engineID id.EngineID
	requests chan runRequest
	cancel   context.CancelFunc
	inner    engine.Engine
	closed   bool
}

func (h *handle) id() id.EngineID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engineID
}

// start brings up a run loop around the given engine. Caller must not
// hold h.mu.
func (h *handle) start(inner engine.Engine) {
	loopCtx, cancel := context.WithCancel(context.Background())
	requests := make(chan runRequest, h.spawner.config.QueueSize)

	h.mu.Lock()
	h.engineID = id.NewEngineID()
	h.requests = requests
	h.cancel = cancel
	h.inner = inner
	h.mu.Unlock()

	go func() {
		defer inner.Close()
		for {
			select {
			case <-loopCtx.Done():
				return
			case req := <-requests:
				result, err := inner.Execute(req.ctx, req.code)
				select {
				case req.reply <- runReply{result: result, err: err}:
				case <-req.ctx.Done():
				}
			}
		}
	}()
}

// Execute submits code to the isolated context and waits for its
// reply, the caller's deadline, or the wall timeout.
func (h *handle) Execute(ctx context.Context, code string) (*engine.Result, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("isolated context is closed")
	}
	requests := h.requests
	h.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := runRequest{
		ctx:   runCtx,
		code:  code,
		reply: make(chan runReply, 1),
	}

	select {
	case requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	wall := time.NewTimer(h.spawner.config.WallTimeout)
	defer wall.Stop()

	select {
	case reply := <-req.reply:
		return reply.result, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-wall.C:
		h.teardown()
		return nil, fmt.Errorf("run exceeded wall timeout %s, context torn down",
			h.spawner.config.WallTimeout)
	}
}

// teardown abandons the current run loop and respawns a fresh engine
// so later runs are not stuck behind a wedged one.
func (h *handle) teardown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	cancel := h.cancel
	wedged := h.engineID
	h.mu.Unlock()

	cancel()

	h.spawner.logger.Warn("tearing down wedged execution context",
		zap.String("engine_id", wedged.String()),
		zap.String("locator", h.locator))

	inner, err := loader.Resolve(context.Background(), h.locator, h.engineCfg)
	if err != nil {
		h.spawner.logger.Error("respawn failed", zap.String("locator", h.locator), zap.Error(err))
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		return
	}
	h.start(inner)
}

// Close stops the run loop and releases the engine.
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.cancel()
	return nil
}
