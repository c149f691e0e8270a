// File: internal/app/client.go
package app

import (
	"context"
	"sync"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/services"
	"github.com/iyunix/go-onyom/internal/services/conversation"
	"github.com/iyunix/go-onyom/internal/services/navigation"
	"github.com/iyunix/go-onyom/internal/services/session"
)

// Client is one signed-in (or signing-in) user's context: their session,
// their navigator, and their conversation cache.
type Client struct {
	Session      *session.Store
	Navigator    *navigation.Navigator
	Conversation *conversation.Coordinator
	logger       services.Logger

	mu         sync.Mutex
	owner      string
	path       string
	redirect   string
	redirectAt string // path the pending redirect was decided for
	onRedirect func(string)
	lastSeen   time.Time

	unsubscribe func()
}

func NewClient(sessions *session.Store, remote conversation.RemoteStore, completer conversation.Completer, storeTimeout time.Duration, logger services.Logger) *Client {
	c := &Client{
		Session:   sessions,
		Navigator: navigation.NewNavigator(),
		logger:    logger,
		path:      navigation.PathRoot,
		lastSeen:  time.Now(),
	}
	c.Conversation = conversation.NewCoordinator(remote, completer, sessions, conversation.NewCache(),
		conversation.Config{StoreTimeout: storeTimeout}, logger)
	c.unsubscribe = sessions.Subscribe(c.sessionChanged)
	return c
}

// sessionChanged runs on every session replacement. A change of user drops
// the previous user's cache and navigation history.
func (c *Client) sessionChanged(s domain.Session) {
	c.mu.Lock()
	prev := c.owner
	c.owner = s.UserID
	path := c.path
	c.mu.Unlock()

	if prev != "" && prev != s.UserID {
		c.Conversation.Reset(prev)
		c.Navigator.Reset()
		c.logger.Debug("client reset after user change", "previous_user_id", prev)
	}
	if target, ok := c.Navigator.Evaluate(s, path); ok {
		c.setRedirect(target, path)
	} else if _, needed := navigation.Decide(s, path); !needed {
		c.mu.Lock()
		c.redirect, c.redirectAt = "", ""
		c.mu.Unlock()
	}
}

func (c *Client) setRedirect(target, from string) {
	c.mu.Lock()
	c.redirect = target
	c.redirectAt = from
	fn := c.onRedirect
	c.mu.Unlock()
	if fn != nil {
		fn(target)
	}
}

// OnRedirect registers fn to receive every navigation the client decides on.
func (c *Client) OnRedirect(fn func(string)) {
	c.mu.Lock()
	c.onRedirect = fn
	c.mu.Unlock()
}

// Visit records path as the current location and returns where the user
// should be sent instead, if anywhere. A redirect decided by a session
// change for this same path is delivered here once; repeating an
// unchanged visit yields nothing.
func (c *Client) Visit(path string) (string, bool) {
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
	current := c.Session.Current()
	target, ok := c.Navigator.Evaluate(current, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok && c.redirect != "" && c.redirectAt == path {
		if fresh, needed := navigation.Decide(current, path); needed && fresh == c.redirect {
			target, ok = fresh, true
		}
	}
	c.redirect, c.redirectAt = "", ""
	return target, ok
}

// TakeRedirect returns and clears the last undelivered redirect.
func (c *Client) TakeRedirect() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := c.redirect
	c.redirect, c.redirectAt = "", ""
	return target, target != ""
}

// Initialize restores the session behind token and hydrates the chat list.
func (c *Client) Initialize(ctx context.Context, token string) error {
	err := c.Session.Initialize(ctx, token)
	c.hydrate(ctx)
	return err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	s, err := c.Session.SignIn(ctx, email, password)
	if err != nil {
		return s, err
	}
	c.hydrate(ctx)
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	s, err := c.Session.SignUp(ctx, email, password)
	if err != nil {
		return s, err
	}
	c.hydrate(ctx)
	return s, nil
}

func (c *Client) ConfirmVerification(ctx context.Context, email, code string) (domain.Session, error) {
	s, err := c.Session.ConfirmVerification(ctx, email, code)
	if err != nil {
		return s, err
	}
	c.hydrate(ctx)
	return s, nil
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.Session.ResendVerification(ctx, email)
}

func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Session, error) {
	return c.Session.UpdateProfile(ctx, update)
}

// SignOut always succeeds locally; the cache purge happens in sessionChanged.
func (c *Client) SignOut(ctx context.Context) {
	c.Session.SignOut(ctx)
}

// hydrate loads the chat list for a freshly authenticated session. A failure
// leaves the cache empty; the next LoadChats retries.
func (c *Client) hydrate(ctx context.Context) {
	if !c.Session.Current().IsAuthenticated() {
		return
	}
	if _, err := c.Conversation.LoadChats(ctx); err != nil {
		c.logger.Warn("chat hydration failed", "user_id", c.Session.Current().UserID, "error", err)
	}
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Client) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Client) busy() bool {
	for _, ch := range c.Conversation.Chats() {
		if c.Conversation.Sending(ch.ID) {
			return true
		}
	}
	return false
}

// Close detaches the client from its session store.
func (c *Client) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
