package desktop

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/wintest/types"
	"github.com/mobile-next/wintest/utils"
)

// DefaultLaunchRegistrySize bounds how many launched processes are tracked.
const DefaultLaunchRegistrySize = 64

// LaunchRegistry remembers processes started through app_launch so they
// can be marked in listings and terminated on shutdown.
type LaunchRegistry struct {
	mu    sync.Mutex
	cache *lru.Cache[int, types.ProcessInfo]
}

func NewLaunchRegistry(size int) (*LaunchRegistry, error) {
	if size <= 0 {
		size = DefaultLaunchRegistrySize
	}

	cache, err := lru.NewWithEvict(size, func(pid int, info types.ProcessInfo) {
		utils.Verbose("launch registry dropped %s (pid %d)", info.Name, pid)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create launch registry: %w", err)
	}
	return &LaunchRegistry{cache: cache}, nil
}

// Register records a launched process.
func (r *LaunchRegistry) Register(info types.ProcessInfo) {
	info.Launched = true
	r.cache.Add(info.PID, info)
}

func (r *LaunchRegistry) Contains(pid int) bool {
	return r.cache.Contains(pid)
}

func (r *LaunchRegistry) Forget(pid int) {
	r.cache.Remove(pid)
}

// List returns tracked processes, oldest first.
func (r *LaunchRegistry) List() []types.ProcessInfo {
	return r.cache.Values()
}

func (r *LaunchRegistry) Len() int {
	return r.cache.Len()
}

// CleanupAll terminates every tracked process that is still running.
func (r *LaunchRegistry) CleanupAll(pm ProcessManager) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, info := range r.cache.Values() {
		if !pm.Exists(info.PID) {
			continue
		}
		if err := pm.Terminate(info.PID); err != nil {
			utils.Verbose("Error terminating %s (pid %d): %v", info.Name, info.PID, err)
			errs = append(errs, err)
		}
	}

	r.cache.Purge()

	if len(errs) > 0 {
		return fmt.Errorf("failed to terminate %d launched process(es): %v", len(errs), errs)
	}
	return nil
}
