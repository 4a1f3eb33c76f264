package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/pkg/crypto"
)

type AuthService struct {
	db             Storage
	passwordHasher crypto.PasswordHasher
	sessionManager *SessionManager
	logger         *zap.Logger
}

func NewAuthService(db Storage, passwordHasher crypto.PasswordHasher, sessionManager *SessionManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		logger:         logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a self-service account and opens a session for it.
// Admin accounts cannot be created this way.
func (s *AuthService) SignUp(ctx context.Context, input core.RegisterInput, client Client) (*core.AuthResult, error) {
	if err := core.ValidateSignUp(input); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	if _, err := s.db.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if _, err := s.db.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}

	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Email:                email,
		Username:             username,
		FullName:             strings.TrimSpace(input.FullName),
		Phone:                input.Phone,
		Role:                 input.Role,
		IsActive:             true,
		KYCStatus:            core.KYCStatusPending,
		BusinessName:         input.BusinessName,
		BusinessAddress:      input.BusinessAddress,
		BusinessRegistration: input.BusinessRegistration,
	}
	if err := s.createUser(ctx, user, hashedPassword); err != nil {
		return nil, err
	}

	result, err := s.sessionManager.Create(ctx, user.ID, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))

	return s.tokenResult(result, user), nil
}

// tokenResult is the login answer: the raw token, its lifetime and the
// profile
func (s *AuthService) tokenResult(result *CreateSessionResult, user *core.User) *core.AuthResult {
	return &core.AuthResult{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.sessionManager.MaxAge() / time.Second),
		User:        user,
	}
}

func (s *AuthService) createUser(ctx context.Context, user *core.User, passwordHash string) error {
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) || errors.Is(err, ErrUsernameTaken) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.db.CreateAccount(ctx, &Account{UserID: user.ID, PasswordHash: passwordHash}); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// SignIn checks an email and password and opens a new session
func (s *AuthService) SignIn(ctx context.Context, email, password string, client Client) (*core.AuthResult, error) {
	if err := core.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	account, err := s.db.GetAccountByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	valid, err := s.passwordHasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		s.logger.Info("sign in rejected", zap.Int64("user_id", user.ID), zap.String("ip", client.IP))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	result, err := s.sessionManager.Create(ctx, user.ID, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.tokenResult(result, user), nil
}

// SignOut revokes the session behind token
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessionManager.Destroy(ctx, token)
}

// GetSession resolves a bearer token to its session and a fresh profile
func (s *AuthService) GetSession(ctx context.Context, token string) (*SessionData, error) {
	session, err := s.sessionManager.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &SessionData{User: user, Session: session}, nil
}

// AdminInput describes the seeded administrator
type AdminInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// EnsureAdmin creates the administrator account unless a user with that
// email already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, input AdminInput) (*core.User, error) {
	email := normalizeEmail(input.Email)
	if existing, err := s.db.GetUserByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check admin: %w", err)
	}

	if len(input.Password) < core.MinPasswordLength {
		return nil, &core.ValidationError{Field: "password", Err: core.ErrPasswordTooShort}
	}
	if input.Username == "" {
		input.Username = "admin"
	}
	if input.FullName == "" {
		input.FullName = "System Administrator"
	}

	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Email:      email,
		Username:   input.Username,
		FullName:   input.FullName,
		Role:       core.RoleAdmin,
		IsActive:   true,
		IsVerified: true,
		KYCStatus:  core.KYCStatusApproved,
	}
	if err := s.createUser(ctx, user, hashedPassword); err != nil {
		return nil, err
	}

	s.logger.Info("admin account created", zap.Int64("user_id", user.ID), zap.String("email", email))
	return user, nil
}
