package agromart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/pkg/credstore"
	"github.com/lborres/agromart/views"
)

// interfaces
type (
	API             = core.API
	AuthAPI         = core.AuthAPI
	MarketAPI       = core.MarketAPI
	CredentialStore = core.CredentialStore
)

// structs
type (
	SessionStore = core.SessionStore
	AuthGateway  = core.AuthGateway
)

type (
	User           = core.User
	Role           = core.Role
	KYCApplication = core.KYCApplication
	KYCStatus      = core.KYCStatus
	KYCSubmission  = core.KYCSubmission
	Farm           = core.Farm
	Listing        = core.Listing
	RegisterInput  = core.RegisterInput
)

type (
	TransportError      = core.TransportError
	APIError            = core.APIError
	AuthenticationError = core.AuthenticationError
	RegistrationError   = core.RegistrationError
	SessionInvalidError = core.SessionInvalidError
	AuthorizationError  = core.AuthorizationError
	ValidationError     = core.ValidationError
)

var (
	ErrNoCredential      = core.ErrNoCredential
	ErrNotAuthenticated  = core.ErrNotAuthenticated
	ErrActionInProgress  = core.ErrActionInProgress
	ErrCredentialChanged = core.ErrCredentialChanged
)

// Config errors
var (
	ErrAPIRequired = errors.New("api transport is required")
)

var (
	UserMessage = core.UserMessage
	RequireRole = core.RequireRole
)

type Config struct {
	API API

	// Optional config
	Credentials CredentialStore
	Logger      *zap.Logger
}

// Client bundles the session, the auth gateway and the page
// constructors over one API transport.
type Client struct {
	Session *SessionStore
	Auth    *AuthGateway
	API     API

	logger *zap.Logger
}

func New(config Config) (*Client, error) {
	if config.API == nil {
		return nil, ErrAPIRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	credentials := config.Credentials
	if credentials == nil {
		credentials = credstore.NewMemory()
	}

	session := core.NewSessionStore(credentials, logger.Named("session"))
	gateway := core.NewAuthGateway(config.API, session, logger.Named("auth"))

	return &Client{
		Session: session,
		Auth:    gateway,
		API:     config.API,
		logger:  logger,
	}, nil
}

// Restore loads a durable credential and confirms it with the API. It
// returns nil, nil when nothing was stored. A rejected credential is
// cleared and reported as *SessionInvalidError.
func (c *Client) Restore(ctx context.Context) (*User, error) {
	found, err := c.Session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return c.Auth.FetchCurrentUser(ctx)
}

func (c *Client) HomePage() *views.HomePage {
	return views.NewHomePage(c.Session, c.logger.Named("views"))
}

func (c *Client) ListingsPage() *views.ListingsPage {
	return views.NewListingsPage(c.Session, c.API, c.logger.Named("views"))
}

func (c *Client) FarmsPage() *views.FarmsPage {
	return views.NewFarmsPage(c.Session, c.API, c.logger.Named("views"))
}

func (c *Client) KYCPage() *views.KYCPage {
	return views.NewKYCPage(c.Session, c.API, c.logger.Named("views"))
}

func (c *Client) AdminKYCPage() *views.AdminKYCPage {
	return views.NewAdminKYCPage(c.Session, c.API, c.logger.Named("views"))
}

func (c *Client) LoginForm() *views.LoginForm {
	return views.NewLoginForm(c.Auth)
}

func (c *Client) RegisterForm() *views.RegisterForm {
	return views.NewRegisterForm(c.Auth)
}
