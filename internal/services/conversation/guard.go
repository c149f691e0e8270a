// File: internal/services/conversation/guard.go
package conversation

import (
	"context"
	"sync"
)

// chatGuard admits one send per chat at a time. Later callers wait for the
// holder to release, or give up when their context ends.
type chatGuard struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
}

func newChatGuard() *chatGuard {
	return &chatGuard{slots: make(map[uint]chan struct{})}
}

func (g *chatGuard) acquire(ctx context.Context, chatID uint) (release func(), err error) {
	for {
		g.mu.Lock()
		held, busy := g.slots[chatID]
		if !busy {
			done := make(chan struct{})
			g.slots[chatID] = done
			g.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					g.mu.Lock()
					delete(g.slots, chatID)
					g.mu.Unlock()
					close(done)
				})
			}, nil
		}
		g.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (g *chatGuard) busy(chatID uint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.slots[chatID]
	return ok
}
