package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lborres/agromart/sandbox"
)

type Options struct {
	// AuthRate and AuthBurst throttle rate-limited endpoints per client
	// IP. A zero AuthRate disables throttling.
	AuthRate  rate.Limit
	AuthBurst int

	Logger *zap.Logger
}

type Adapter struct {
	app     *fiber.App
	sandbox *sandbox.Sandbox
	limiter *RateLimiter
	logger  *zap.Logger
}

var _ sandbox.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{app: app, logger: logger}
	if opts.AuthRate > 0 {
		a.limiter = NewRateLimiter(opts.AuthRate, opts.AuthBurst)
	}
	return a
}

func (a *Adapter) handlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"register":      a.register,
		"login":         a.login,
		"me":            a.me,
		"logout":        a.logout,
		"listFarms":     a.listFarms,
		"createFarm":    a.createFarm,
		"listListings":  a.listListings,
		"createListing": a.createListing,
		"kycStatus":     a.kycStatus,
		"kycUpload":     a.kycUpload,
		"kycQueue":      a.kycQueue,
		"kycDocument":   a.kycDocument,
		"kycReview":     a.kycReview,
		"health":        a.health,
	}
}

// RegisterRoutes binds every endpoint in the sandbox registry under its
// base path. Auth, role and rate-limit wrappers come from the endpoint
// description.
func (a *Adapter) RegisterRoutes(s *sandbox.Sandbox) error {
	a.sandbox = s
	api := a.app.Group(s.BasePath)
	handlers := a.handlers()

	for _, ep := range s.Endpoints.Endpoints() {
		h, ok := handlers[ep.OperationID]
		if !ok {
			return fmt.Errorf("no handler for %s %s (%s)", ep.Method, ep.Path, ep.OperationID)
		}

		if len(ep.Roles) > 0 {
			h = requireRole(ep.Roles, h)
		}
		if ep.Auth {
			h = a.requireAuth(h)
		}
		if ep.RateLimited && a.limiter != nil {
			h = a.limiter.Limit(h)
		}

		api.Add([]string{ep.Method}, ep.Path, h)
	}

	return nil
}
