package views

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/lborres/agromart/core"
)

// form is the shared submit lock and result of the auth forms
type form struct {
	mu         sync.Mutex
	submitting bool
	err        error
	user       *core.User
}

func (f *form) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return core.ErrActionInProgress
	}
	f.submitting = true
	f.err = nil
	return nil
}

func (f *form) finish(user *core.User, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	f.err = err
	if err == nil {
		f.user = user
	}
	return err
}

// Submitting reports whether a request is in flight
func (f *form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *form) User() *core.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *form) render(w io.Writer, success string) error {
	if err := f.Err(); err != nil {
		_, werr := fmt.Fprintf(w, "Error: %s\n", core.UserMessage(err))
		return werr
	}
	if user := f.User(); user != nil {
		_, err := fmt.Fprintf(w, success+"\n", user.Username, user.Role)
		return err
	}
	return nil
}

type LoginForm struct {
	form
	gateway *core.AuthGateway
	email   string
}

func NewLoginForm(gateway *core.AuthGateway) *LoginForm {
	return &LoginForm{gateway: gateway}
}

// Submit logs in. The form stays ready for another attempt on failure.
func (f *LoginForm) Submit(ctx context.Context, email, password string) error {
	if err := f.begin(); err != nil {
		return err
	}

	f.mu.Lock()
	f.email = email
	f.mu.Unlock()

	user, err := f.gateway.Login(ctx, email, password)
	return f.finish(user, err)
}

// Email is the last entered address, kept for redisplay
func (f *LoginForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *LoginForm) Render(w io.Writer) error {
	return f.render(w, "Logged in as %s (%s).")
}

type RegisterForm struct {
	form
	gateway *core.AuthGateway
	values  core.RegisterInput
}

func NewRegisterForm(gateway *core.AuthGateway) *RegisterForm {
	return &RegisterForm{gateway: gateway}
}

// Submit registers a new account. Validation failures never reach the
// network.
func (f *RegisterForm) Submit(ctx context.Context, input core.RegisterInput) error {
	if err := f.begin(); err != nil {
		return err
	}

	kept := input
	kept.Password = ""
	kept.ConfirmPassword = ""
	f.mu.Lock()
	f.values = kept
	f.mu.Unlock()

	user, err := f.gateway.Register(ctx, input)
	return f.finish(user, err)
}

// Values returns what was entered, without the passwords
func (f *RegisterForm) Values() core.RegisterInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *RegisterForm) Render(w io.Writer) error {
	return f.render(w, "Account created for %s (%s).")
}
