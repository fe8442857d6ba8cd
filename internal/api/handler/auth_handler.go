package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haripriya/clinic-backend/internal/api/metrics"
	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.AuthLoginsTotal.WithLabelValues("throttled").Inc()
		case errors.Is(err, domain.ErrAuthenticationFailed):
			metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}
	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()

	return respond(c, http.StatusOK, "Login successful", loginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	})
}

// Register creates a new staff account. Requires the ADMIN role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	metrics.AuthRegistrationsTotal.WithLabelValues(string(user.Role)).Inc()

	return respond(c, http.StatusCreated, "User registered successfully", toUserResponse(user))
}

// Me returns the authenticated user's account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]any
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User details retrieved successfully", toUserResponse(user))
}
