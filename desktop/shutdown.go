package desktop

import (
	"context"
	"fmt"
	"sync"

	"github.com/mobile-next/wintest/utils"
)

// ShutdownHook runs cleanup functions when the server exits
// (SIGINT/SIGTERM, server.shutdown or the end of an MCP session).
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func(ctx context.Context) error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup function. Hooks run in reverse registration
// order, like deferred calls.
func (s *ShutdownHook) Register(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: fn})
	utils.Verbose("Registered shutdown hook: %s", name)
}

// Shutdown runs every hook once, even when some fail or ctx expires, and
// reports all failures together. Later calls are no-ops.
func (s *ShutdownHook) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	if len(hooks) == 0 {
		return nil
	}

	utils.Verbose("Executing %d shutdown hook(s)", len(hooks))
	var errs []error

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		utils.Verbose("Running shutdown hook: %s", hook.name)
		if err := hook.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			utils.Verbose("Shutdown hook %s failed: %v", hook.name, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown failed with %d error(s): %v", len(errs), errs)
	}

	utils.Verbose("All shutdown hooks completed successfully")
	return nil
}

func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}
