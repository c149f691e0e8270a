// File: internal/app/clients.go
package app

import (
	"context"
	"sync"
	"time"

	"github.com/iyunix/go-onyom/internal/services"
)

// Clients keeps one Client per session token so that each signed-in user
// gets their own session, cache and navigator.
type Clients struct {
	newClient func() *Client
	logger    services.Logger
	now       func() time.Time

	mu      sync.Mutex
	byToken map[string]*Client
}

func NewClients(newClient func() *Client, logger services.Logger) *Clients {
	return &Clients{
		newClient: newClient,
		logger:    logger,
		now:       time.Now,
		byToken:   make(map[string]*Client),
	}
}

// New returns a client that is not yet bound to a token.
func (cs *Clients) New() *Client {
	return cs.newClient()
}

// Resolve returns the client for token, restoring it from the identity
// provider when this process has not seen the token yet. The returned client
// may be unauthenticated if the token was rejected.
func (cs *Clients) Resolve(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		c := cs.newClient()
		return c, c.Initialize(ctx, "")
	}

	cs.mu.Lock()
	c, ok := cs.byToken[token]
	cs.mu.Unlock()
	if ok {
		c.touch(cs.now())
		return c, nil
	}

	c = cs.newClient()
	if err := c.Initialize(ctx, token); err != nil {
		c.Close()
		return nil, err
	}
	if !c.Session.Current().IsAuthenticated() {
		return c, nil
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing, ok := cs.byToken[token]; ok {
		c.Close()
		return existing, nil
	}
	cs.byToken[token] = c
	return c, nil
}

// Register binds c to its current session token.
func (cs *Clients) Register(c *Client) {
	token := c.Session.Current().Token
	if token == "" {
		return
	}
	c.touch(cs.now())
	cs.mu.Lock()
	cs.byToken[token] = c
	cs.mu.Unlock()
}

func (cs *Clients) Remove(token string) {
	cs.mu.Lock()
	c, ok := cs.byToken[token]
	delete(cs.byToken, token)
	cs.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (cs *Clients) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.byToken)
}

// Sweep drops clients idle for longer than maxIdle. Their tokens stay valid
// and are restored on the next request.
func (cs *Clients) Sweep(maxIdle time.Duration) int {
	cutoff := cs.now().Add(-maxIdle)
	cs.mu.Lock()
	var stale []*Client
	for token, c := range cs.byToken {
		if c.idleSince().Before(cutoff) && !c.busy() {
			delete(cs.byToken, token)
			stale = append(stale, c)
		}
	}
	cs.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	if len(stale) > 0 {
		cs.logger.Debug("swept idle clients", "count", len(stale))
	}
	return len(stale)
}
