package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/dto"
	"github.com/spec-kit/pao-metrics/internal/auth"
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// Authenticator is the account surface of the auth provider.
type Authenticator interface {
	SignUp(ctx context.Context, clientID, email, password string) (*domain.Session, error)
	SignIn(ctx context.Context, clientID, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, clientID string) error
	Refresh(ctx context.Context, clientID string) (*domain.Session, error)
	UpdateEmail(ctx context.Context, clientID, email string) (*domain.Session, error)
}

// AuthHandler exposes sign-up, sign-in and session maintenance.
// The client's shell follows the resulting auth events on its own.
type AuthHandler struct {
	provider Authenticator
}

// NewAuthHandler constructs handler. A nil provider means demo mode.
func NewAuthHandler(provider Authenticator) *AuthHandler {
	return &AuthHandler{provider: provider}
}

// SignUp POST /auth/sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	return h.credentials(c, http.StatusCreated, h.signUp)
}

// SignIn POST /auth/sign-in.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	return h.credentials(c, http.StatusOK, h.signIn)
}

func (h *AuthHandler) signUp(ctx context.Context, clientID, email, password string) (*domain.Session, error) {
	return h.provider.SignUp(ctx, clientID, email, password)
}

func (h *AuthHandler) signIn(ctx context.Context, clientID, email, password string) (*domain.Session, error) {
	return h.provider.SignIn(ctx, clientID, email, password)
}

func (h *AuthHandler) credentials(c *fiber.Ctx, status int, call func(context.Context, string, string, string) (*domain.Session, error)) error {
	clientID, err := h.client(c)
	if err != nil {
		return err
	}
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	session, err := call(c.UserContext(), clientID, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// SignOut POST /auth/sign-out.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	clientID, err := h.client(c)
	if err != nil {
		return err
	}
	if err := h.provider.SignOut(c.UserContext(), clientID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Refresh POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	clientID, err := h.client(c)
	if err != nil {
		return err
	}
	session, err := h.provider.Refresh(c.UserContext(), clientID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// UpdateUser PATCH /auth/user.
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	clientID, err := h.client(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	session, err := h.provider.UpdateEmail(c.UserContext(), clientID, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

func (h *AuthHandler) client(c *fiber.Ctx) (string, error) {
	if h.provider == nil {
		return "", apperrors.NewConflict("authentication is unavailable in demo mode", nil)
	}
	clientID, ok := auth.ClientIDFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("client id required")
	}
	return clientID, nil
}
