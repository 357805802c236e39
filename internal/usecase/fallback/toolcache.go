package fallback

import (
	"os/exec"
	"sync"
)

// ToolCache remembers whether command-line tools are installed for the life
// of a process. Tiers that shell out share one cache, injected at wiring time.
type ToolCache struct {
	mu       sync.Mutex
	lookPath func(string) (string, error)
	entries  map[string]toolEntry
}

type toolEntry struct {
	path string
	err  error
}

// NewToolCache returns a cache backed by lookPath, or exec.LookPath when nil.
func NewToolCache(lookPath func(string) (string, error)) *ToolCache {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &ToolCache{
		lookPath: lookPath,
		entries:  make(map[string]toolEntry),
	}
}

// Lookup returns the resolved path of tool. A missing tool yields a
// *ToolNotFoundError. Both outcomes are cached until Reset.
func (c *ToolCache) Lookup(tool string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[tool]; ok {
		return e.path, e.err
	}
	path, err := c.lookPath(tool)
	var e toolEntry
	if err != nil {
		e.err = &ToolNotFoundError{Tool: tool, Err: err}
	} else {
		e.path = path
	}
	c.entries[tool] = e
	return e.path, e.err
}

// Reset forgets every cached lookup.
func (c *ToolCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]toolEntry)
}
