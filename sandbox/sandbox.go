package sandbox

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lborres/agromart/pkg/cache"
	"github.com/lborres/agromart/pkg/crypto"
)

const defaultBasePath = "/api/v1"

// Config errors
var (
	ErrStorageRequired = errors.New("storage adapter is required")
)

// HTTPAdapter binds the endpoint registry to an HTTP framework
type HTTPAdapter interface {
	RegisterRoutes(s *Sandbox) error
}

type Config struct {
	Storage Storage

	// Optional config
	HTTP           HTTPAdapter
	Documents      DocumentStore
	Cache          SessionCache
	DisableCache   bool
	SessionConfig  *SessionConfig
	PasswordHasher crypto.PasswordHasher
	BasePath       string
	Logger         *zap.Logger
}

// Sandbox is a self-contained marketplace API for local use and tests
type Sandbox struct {
	Auth      *AuthService
	KYC       *KYCService
	Market    *MarketService
	Sessions  *SessionManager
	Endpoints *EndpointRegistry
	BasePath  string
	Logger    *zap.Logger

	storage Storage
	cache   SessionCache
	started time.Time
}

func New(config Config) (*Sandbox, error) {
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sessionCache := config.Cache
	if sessionCache == nil && !config.DisableCache {
		sessionCache = cache.NewMemory[*Session](cache.Config{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		})
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		sessionConfig = &SessionConfig{MaxAge: DefaultSessionMaxAge}
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	documents := config.Documents
	if documents == nil {
		documents = NewMemoryDocuments(DefaultMaxDocumentSize)
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	sessions := NewSessionManager(*sessionConfig, config.Storage, sessionCache)

	s := &Sandbox{
		Auth:      NewAuthService(config.Storage, passwordHasher, sessions, logger.Named("auth")),
		KYC:       NewKYCService(config.Storage, documents, logger.Named("kyc")),
		Market:    NewMarketService(config.Storage, config.Storage, logger.Named("market")),
		Sessions:  sessions,
		Endpoints: NewEndpointRegistry(),
		BasePath:  basePath,
		Logger:    logger,
		storage:   config.Storage,
		cache:     sessionCache,
		started:   time.Now(),
	}

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Health reports on the service and its storage
type Health struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services"`
	Cache    *cache.Stats      `json:"cache,omitempty"`
}

func (h Health) OK() bool {
	return h.Status == "healthy"
}

func (s *Sandbox) Health(ctx context.Context) Health {
	h := Health{
		Status:   "healthy",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Services: map[string]string{"api": "healthy", "database": "healthy"},
	}

	if err := s.storage.Ping(ctx); err != nil {
		s.Logger.Warn("storage ping failed", zap.Error(err))
		h.Status = "unhealthy"
		h.Services["database"] = "unhealthy"
	}

	if withStats, ok := s.cache.(interface{ Stats() cache.Stats }); ok {
		stats := withStats.Stats()
		h.Cache = &stats
	}
	return h
}
