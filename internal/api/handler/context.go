package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/haripriya/clinic-backend/internal/auth"
	"github.com/haripriya/clinic-backend/internal/core/domain"
)

// currentPrincipal returns the principal attached by the Auth middleware.
// Its absence means the route was mounted without the guard.
func currentPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return domain.Principal{}, domain.NewAuthenticationError("Full authentication is required to access this resource")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("Malformed request body")
	}
	return c.Validate(req)
}
