package fiber

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/sandbox"
)

// errorBody is the API error envelope
type errorBody struct {
	Detail string `json:"detail"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// clientOf copies request values; fiber reuses their memory after the
// handler returns.
func clientOf(c fiber.Ctx) sandbox.Client {
	return sandbox.Client{
		IP:        strings.Clone(c.IP()),
		UserAgent: strings.Clone(c.Get(fiber.HeaderUserAgent)),
	}
}

func (a *Adapter) register(c fiber.Ctx) error {
	var input core.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, sandbox.ErrInvalidRequest)
	}

	result, err := a.sandbox.Auth.SignUp(c.Context(), input, clientOf(c))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input loginBody
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, sandbox.ErrInvalidRequest)
	}

	result, err := a.sandbox.Auth.SignIn(c.Context(), input.Email, input.Password, clientOf(c))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

func (a *Adapter) me(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(currentUser(c))
}

func (a *Adapter) logout(c fiber.Ctx) error {
	if err := a.sandbox.Auth.SignOut(c.Context(), extractToken(c)); err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (a *Adapter) health(c fiber.Ctx) error {
	h := a.sandbox.Health(c.Context())
	status := http.StatusOK
	if !h.OK() {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(h)
}

// fail logs unexpected errors before writing the response
func (a *Adapter) fail(c fiber.Ctx, err error) error {
	if mapErrorToStatus(err) == http.StatusInternalServerError {
		a.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return handleError(c, err)
}

// handleError writes err as {"detail": ...} with its mapped status.
// Internal failures never leak their cause.
func handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)

	detail := err.Error()
	var valid *core.ValidationError
	switch {
	case status == http.StatusInternalServerError:
		detail = http.StatusText(status)
	case errors.As(err, &valid):
		detail = core.UserMessage(err)
	}

	return c.Status(status).JSON(errorBody{Detail: detail})
}

func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var valid *core.ValidationError

	switch {
	case errors.Is(err, sandbox.ErrInvalidCredentials),
		errors.Is(err, sandbox.ErrMissingAuthHeader),
		errors.Is(err, sandbox.ErrInvalidToken),
		errors.Is(err, sandbox.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, sandbox.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, sandbox.ErrApplicationNotFound),
		errors.Is(err, sandbox.ErrUserNotFound),
		errors.Is(err, sandbox.ErrFarmNotFound),
		errors.Is(err, sandbox.ErrDocumentNotFound):
		return http.StatusNotFound

	case errors.Is(err, sandbox.ErrNotReviewable),
		errors.Is(err, core.ErrApplicationActive):
		return http.StatusConflict

	case errors.Is(err, sandbox.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.As(err, &valid),
		errors.Is(err, sandbox.ErrUserExists),
		errors.Is(err, sandbox.ErrUsernameTaken),
		errors.Is(err, sandbox.ErrVerificationRequired),
		errors.Is(err, sandbox.ErrInactiveAccount),
		errors.Is(err, sandbox.ErrFarmOwnership),
		errors.Is(err, sandbox.ErrInvalidRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
