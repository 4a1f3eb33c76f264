package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

type State int

const (
	StateUnauthenticated State = iota
	StateForbidden
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateForbidden:
		return "forbidden"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	MessageLogin  = "Please log in to view this page."
	MessageRetry  = "Something went wrong loading this page. Run the command again to retry."
	messageDenied = "Access denied: this page is only available to %s."
)

// FetchFunc loads a page's data with the credential read at request
// start. token is "" for anonymous callers of public pages.
type FetchFunc[T any] func(ctx context.Context, token string) (T, error)

// PageConfig describes one page
type PageConfig[T any] struct {
	Name string

	// Roles allowed on the page; empty means any authenticated user
	Roles []core.Role

	// Public pages load for anonymous callers too
	Public bool

	Fetch FetchFunc[T]
}

// Page is the role-gated view controller shared by every screen.
// States move Unauthenticated → Loading → Ready | Error, with Forbidden
// for authenticated users whose role does not match.
type Page[T any] struct {
	config  PageConfig[T]
	session *core.SessionStore
	logger  *zap.Logger
	seq     core.Sequencer

	mu          sync.Mutex
	ctx         context.Context
	state       State
	data        T
	err         error
	actionErr   error
	locked      map[string]bool
	closed      bool
	unsubscribe func()
	loads       int
}

func NewPage[T any](config PageConfig[T], session *core.SessionStore, logger *zap.Logger) *Page[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Page[T]{
		config:  config,
		session: session,
		logger:  logger.With(zap.String("page", config.Name)),
		locked:  make(map[string]bool),
	}
}

// Mount evaluates the gate, loads when allowed, and follows session
// changes until Close. ctx bounds the page's lifetime and every load
// triggered by a session change.
func (p *Page[T]) Mount(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return core.ErrClosed
	}
	p.ctx = ctx
	if p.unsubscribe == nil {
		p.unsubscribe = p.session.Subscribe(func(*core.User) {
			p.mu.Lock()
			ctx, closed := p.ctx, p.closed
			p.mu.Unlock()
			if closed {
				return
			}
			_ = p.Refresh(ctx)
		})
	}
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// Close detaches the page. Responses resolving afterwards are dropped.
func (p *Page[T]) Close() {
	p.mu.Lock()
	p.closed = true
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Gate reports why the current session may not see this page, or nil.
func (p *Page[T]) Gate() error {
	user := p.session.CurrentUser()
	if user == nil && p.config.Public {
		return nil
	}
	return core.RequireRole(user, p.config.Roles...)
}

// Refresh re-evaluates the gate and reloads when it passes. It doubles
// as the retry affordance from the Error state.
func (p *Page[T]) Refresh(ctx context.Context) error {
	if err := p.Gate(); err != nil {
		p.deny(err)
		return err
	}
	return p.load(ctx)
}

// Retry is Refresh under the name the error state offers
func (p *Page[T]) Retry(ctx context.Context) error {
	return p.Refresh(ctx)
}

func (p *Page[T]) deny(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// any load still in flight belongs to the previous session
	p.seq.Next()

	var zero T
	p.data = zero
	p.err = err
	if errors.Is(err, core.ErrNotAuthenticated) {
		p.state = StateUnauthenticated
	} else {
		p.state = StateForbidden
	}
}

func (p *Page[T]) load(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return core.ErrClosed
	}
	seq := p.seq.Next()
	p.state = StateLoading
	p.err = nil
	p.loads++
	p.mu.Unlock()

	token, _ := p.session.Credential()
	data, err := p.config.Fetch(ctx, token)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Debug("dropping response for closed page", zap.Uint64("seq", seq))
		return core.ErrClosed
	}
	if !p.seq.Current(seq) {
		p.logger.Debug("dropping stale response", zap.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		p.logger.Warn("page load failed", zap.Error(err))
		p.state = StateError
		p.err = err
		return err
	}

	p.state = StateReady
	p.data = data
	return nil
}

// Mutate runs a user action under the page's mutation model: the action
// is locked for the duration of its request, a success reloads the page
// from the source of truth, and a failure unlocks and surfaces the
// server's reason. Nothing is retried or assumed.
func (p *Page[T]) Mutate(ctx context.Context, action string, fn func(ctx context.Context, token string) error) error {
	if err := p.Gate(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return core.ErrClosed
	}
	if p.locked[action] {
		p.mu.Unlock()
		return core.ErrActionInProgress
	}
	p.locked[action] = true
	p.actionErr = nil
	p.mu.Unlock()

	token, _ := p.session.Credential()
	err := fn(ctx, token)

	p.mu.Lock()
	delete(p.locked, action)
	if err != nil {
		p.actionErr = err
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Info("action failed", zap.String("action", action), zap.Error(err))
		return err
	}

	p.logger.Info("action succeeded", zap.String("action", action))

	// the session may have changed while the request was out, so the gate
	// is checked again; a failed reload lands in the page state
	_ = p.Refresh(ctx)
	return nil
}

// reject records an action refused before any request was made
func (p *Page[T]) reject(err error) error {
	p.mu.Lock()
	p.actionErr = err
	p.mu.Unlock()
	return err
}

func (p *Page[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Page[T]) Data() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// Err is the error behind the current state, if any
func (p *Page[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// ActionErr is the error from the last failed action, cleared when the
// next action starts
func (p *Page[T]) ActionErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.actionErr
}

// Locked reports whether action is waiting for its response.
func (p *Page[T]) Locked(action string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locked[action]
}

// Loads counts the fetches this page has issued.
func (p *Page[T]) Loads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads
}

// Message is the text shown for the non-ready states
func (p *Page[T]) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateUnauthenticated:
		return MessageLogin
	case StateForbidden:
		var authz *core.AuthorizationError
		if errors.As(p.err, &authz) {
			return fmt.Sprintf(messageDenied, roleList(authz.Required))
		}
		return core.UserMessage(p.err)
	case StateLoading:
		return "Loading..."
	case StateError:
		return core.UserMessage(p.err) + "\n" + MessageRetry
	}
	return ""
}

func roleList(roles []core.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r) + "s"
	}
	return strings.Join(names, " and ")
}
