package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/engine/js"
	"github.com/runpad/backend/internal/engine/star"
	"github.com/runpad/backend/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ResolveFunc obtains a ready execution engine for a module locator.
type ResolveFunc func(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error)

// Loader lazily resolves the execution engine on first dispatch and
// memoizes the handle for the process lifetime. Memoization is a
// correctness requirement: a second resolution would duplicate engine
// state (pools, preludes) behind the first.
type Loader struct {
	locator string
	config  engine.Config
	resolve ResolveFunc
	logger  *logging.Logger

	group singleflight.Group

	mu     sync.RWMutex
	handle engine.Engine // Written once, on first successful load
}

// New creates a loader for the given module locator.
func New(locator string, cfg engine.Config, logger *logging.Logger) *Loader {
	return &Loader{
		locator: locator,
		config:  cfg,
		resolve: Resolve,
		logger:  logger,
	}
}

// WithResolver overrides engine resolution, for tests and embedding.
func (l *Loader) WithResolver(fn ResolveFunc) *Loader {
	l.resolve = fn
	return l
}

// Load returns the engine handle, resolving it on first call.
// Concurrent first callers share a single in-flight resolution; a
// failed load is not cached, so the next call retries.
func (l *Loader) Load(ctx context.Context) (engine.Engine, error) {
	l.mu.RLock()
	handle := l.handle
	l.mu.RUnlock()
	if handle != nil {
		return handle, nil
	}

	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		// Re-check: a previous flight may have completed between the
		// fast path and joining the group.
		l.mu.RLock()
		cached := l.handle
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		l.logger.Info("loading execution module", zap.String("locator", l.locator))

		eng, err := l.resolve(ctx, l.locator, l.config)
		if err != nil {
			l.logger.Error("execution module load failed",
				zap.String("locator", l.locator), zap.Error(err))
			if !engine.IsLoadFailure(err) {
				err = fmt.Errorf("%w: %v", engine.ErrModuleLoad, err)
			}
			return nil, err
		}

		l.mu.Lock()
		l.handle = eng
		l.mu.Unlock()

		l.logger.Info("execution module ready", zap.String("locator", l.locator))
		return eng, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(engine.Engine), nil
}

// Dispatch loads the engine if needed and hands it the request code.
// The engine owns output handling; the result is returned for
// surfaces that choose to observe it.
func (l *Loader) Dispatch(ctx context.Context, req engine.Request) (*engine.Result, error) {
	handle, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return handle.Execute(ctx, req.Code)
}

// Loaded reports whether the engine handle has been resolved.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handle != nil
}

// Close releases the engine handle if one was loaded.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == nil {
		return nil
	}
	err := l.handle.Close()
	l.handle = nil
	return err
}

// Resolve is the default ResolveFunc: it parses the locator, fetches
// any prelude it names, and instantiates the matching engine.
func Resolve(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error) {
	loc, err := engine.ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	prelude, err := engine.FetchPrelude(ctx, loc)
	if err != nil {
		return nil, err
	}
	if prelude != "" {
		cfg.Prelude = prelude
	}

	switch loc.Kind {
	case engine.KindGoja:
		return js.NewPool(cfg)
	case engine.KindStarlark:
		return star.New(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownLocator, locator)
	}
}
