package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/app"
	"github.com/spec-kit/pao-metrics/internal/auth"
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

const shellKey = "app_shell"

// ShellSource hands out the shell of a browser client.
type ShellSource interface {
	Get(clientID string) (*app.Shell, error)
}

// LoadShell attaches the client's shell to the request. It must run after
// auth.ClientMiddleware.
func LoadShell(shells ShellSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID, ok := auth.ClientIDFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("client id required")
		}
		shell, err := shells.Get(clientID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		c.Locals(shellKey, shell)
		return c.Next()
	}
}

// ShellFromContext returns the shell attached by LoadShell.
func ShellFromContext(c *fiber.Ctx) (*app.Shell, error) {
	shell, ok := c.Locals(shellKey).(*app.Shell)
	if !ok || shell == nil {
		return nil, apperrors.NewInternalError(nil)
	}
	return shell, nil
}

// RequireView rejects the request unless the client's profile may open view.
// No profile yet is 401, a disallowed view is 403.
func RequireView(view domain.ViewID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shell, err := ShellFromContext(c)
		if err != nil {
			return err
		}
		if shell.Profile() == nil {
			return apperrors.NewUnauthorized("sign in required")
		}
		if !shell.IsViewAllowed(view) {
			return apperrors.NewForbidden("view not allowed for role")
		}
		return c.Next()
	}
}

func optionalInt64Query(c *fiber.Ctx, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+key, map[string]any{key: raw})
	}
	return &v, nil
}
