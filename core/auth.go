package core

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const defaultLoginRejection = "Invalid email or password"

// AuthGateway runs the auth round trips and applies their results to the
// session. No operation is retried.
type AuthGateway struct {
	api     AuthAPI
	session *SessionStore
	logger  *zap.Logger
}

func NewAuthGateway(api AuthAPI, session *SessionStore, logger *zap.Logger) *AuthGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthGateway{
		api:     api,
		session: session,
		logger:  logger,
	}
}

func (g *AuthGateway) Session() *SessionStore {
	return g.session
}

// Login authenticates and installs the returned credential and user.
// On any failure the session is left exactly as it was.
func (g *AuthGateway) Login(ctx context.Context, email, password string) (*User, error) {
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}

	result, err := g.api.Login(ctx, email, password)
	if err != nil {
		g.logger.Info("login rejected", zap.String("email", email), zap.Error(err))

		var api *APIError
		if errors.As(err, &api) && !api.ServerFault() {
			detail := api.Detail
			if detail == "" {
				detail = defaultLoginRejection
			}
			return nil, &AuthenticationError{Detail: detail, Err: err}
		}
		return nil, err
	}
	if result == nil || result.AccessToken == "" || result.User == nil {
		return nil, &TransportError{Op: "login", Err: errors.New("response missing token or user")}
	}

	if err := g.session.Establish(ctx, result.AccessToken, result.User); err != nil {
		// the in-memory session is usable even if it could not be persisted
		g.logger.Warn("session established without persistence", zap.Error(err))
	}

	g.logger.Info("logged in",
		zap.Int64("user_id", result.User.ID),
		zap.String("role", string(result.User.Role)))

	return result.User, nil
}

// Register validates input locally, creates the account, and installs
// the returned session exactly as Login does.
func (g *AuthGateway) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if err := ValidateRegistration(input); err != nil {
		return nil, err
	}

	result, err := g.api.Register(ctx, input)
	if err != nil {
		g.logger.Info("registration rejected", zap.String("email", input.Email), zap.Error(err))

		var api *APIError
		if errors.As(err, &api) && !api.ServerFault() {
			detail := api.Detail
			if detail == "" {
				detail = "Registration failed"
			}
			return nil, &RegistrationError{Detail: detail, Err: err}
		}
		return nil, err
	}
	if result == nil || result.AccessToken == "" || result.User == nil {
		return nil, &TransportError{Op: "register", Err: errors.New("response missing token or user")}
	}

	if err := g.session.Establish(ctx, result.AccessToken, result.User); err != nil {
		g.logger.Warn("session established without persistence", zap.Error(err))
	}

	g.logger.Info("registered",
		zap.Int64("user_id", result.User.ID),
		zap.String("role", string(result.User.Role)))

	return result.User, nil
}

// FetchCurrentUser confirms the stored credential. Any failure clears
// the whole session; this is how stale credentials heal.
func (g *AuthGateway) FetchCurrentUser(ctx context.Context) (*User, error) {
	token, ok := g.session.Credential()
	if !ok {
		return nil, ErrNoCredential
	}

	user, err := g.api.Me(ctx, token)
	if err == nil && (user == nil || user.ID == 0) {
		err = &TransportError{Op: "me", Err: errors.New("empty profile")}
	}

	// A login may have replaced the credential while this request was out.
	// Only the credential that was checked is acted upon.
	if err != nil {
		cleared, clearErr := g.session.invalidate(ctx, token)
		if !cleared {
			return nil, ErrCredentialChanged
		}
		if clearErr != nil {
			g.logger.Warn("failed to clear stored credential", zap.Error(clearErr))
		}
		g.logger.Info("stored credential rejected, session cleared", zap.Error(err))
		return nil, &SessionInvalidError{Err: err}
	}

	if !g.session.resolve(token, user) {
		return nil, ErrCredentialChanged
	}
	return user, nil
}

// Logout clears the session unconditionally. The server session is
// revoked best-effort afterwards.
func (g *AuthGateway) Logout(ctx context.Context) {
	token, ok := g.session.Credential()

	if err := g.session.ClearCredential(ctx); err != nil {
		g.logger.Warn("failed to clear stored credential on logout", zap.Error(err))
	}

	if !ok {
		return
	}
	if err := g.api.Logout(ctx, token); err != nil {
		g.logger.Debug("server logout failed", zap.Error(err))
	}
}
