package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/haripriya/clinic-backend/internal/api/metrics"
	"github.com/haripriya/clinic-backend/internal/auth"
	"github.com/haripriya/clinic-backend/internal/core/domain"
)

const msgForbidden = "Access denied: insufficient permissions"

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := auth.PrincipalFromContext(c.Request().Context())
			if !ok {
				return domain.NewAuthenticationError(msgUnauthorized)
			}
			if !p.HasAnyRole(allowedRoles...) {
				metrics.AuthAccessDeniedTotal.WithLabelValues(string(p.Role)).Inc()
				return &domain.Error{Kind: domain.ErrAuthorizationDenied, Message: msgForbidden}
			}
			return next(c)
		}
	}
}
