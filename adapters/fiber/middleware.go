package fiber

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/sandbox"
)

type localsKey int

const (
	userKey localsKey = iota
	sessionKey
)

// requireAuth resolves the bearer token and stores the user and session
// for downstream handlers.
func (a *Adapter) requireAuth(next fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return handleError(c, sandbox.ErrMissingAuthHeader)
		}

		data, err := a.sandbox.Auth.GetSession(c.Context(), token)
		if err != nil {
			a.logger.Debug("rejected credential", zap.String("path", c.Path()), zap.Error(err))
			return handleError(c, err)
		}

		c.Locals(userKey, data.User)
		c.Locals(sessionKey, data.Session)
		return next(c)
	}
}

// requireRole must run inside requireAuth
func requireRole(roles []core.Role, next fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		user := currentUser(c)
		if user == nil || !slices.Contains(roles, user.Role) {
			return handleError(c, sandbox.ErrForbidden)
		}
		return next(c)
	}
}

func currentUser(c fiber.Ctx) *core.User {
	user, _ := c.Locals(userKey).(*core.User)
	return user
}

// extractToken reads an "Authorization: Bearer <token>" header
func extractToken(c fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
