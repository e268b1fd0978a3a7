package service

import (
	"context"
	"sync"
)

// syncCommander is safe to share between the Run goroutine and the test.
type syncCommander struct {
	mu      sync.Mutex
	running string
	calls   int
}

func (c *syncCommander) Execute(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.running, nil
}

func (c *syncCommander) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
