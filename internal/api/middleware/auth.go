package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/haripriya/clinic-backend/internal/api/metrics"
	"github.com/haripriya/clinic-backend/internal/auth"
	"github.com/haripriya/clinic-backend/internal/core/domain"
)

const msgUnauthorized = "Full authentication is required to access this resource"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// UserLookup resolves the account behind a token subject.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Auth validates the bearer token, re-loads the account it names and attaches
// the resulting principal to the request context. Accounts that were removed
// or deactivated after the token was issued are rejected.
func Auth(tokens TokenValidator, users UserLookup, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthGuardRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.NewAuthenticationError(msgUnauthorized)
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				kind := auth.Kind(err)
				metrics.TokenValidationFailuresTotal.WithLabelValues(kind).Inc()
				log.Debug().Str("kind", kind).Str("path", c.Request().URL.Path).Msg("token rejected")
				return domain.NewAuthenticationError(msgUnauthorized)
			}

			userID, err := claims.UserID()
			if err != nil {
				metrics.TokenValidationFailuresTotal.WithLabelValues("malformed").Inc()
				return domain.NewAuthenticationError(msgUnauthorized)
			}

			ctx := c.Request().Context()
			user, err := users.FindByID(ctx, userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthGuardRejectionsTotal.WithLabelValues("user_missing").Inc()
					return domain.NewAuthenticationError(msgUnauthorized)
				}
				return err
			}
			if !user.Active {
				metrics.AuthGuardRejectionsTotal.WithLabelValues("user_inactive").Inc()
				log.Info().Int64("user_id", user.ID).Msg("token presented for inactive account")
				return domain.NewAuthenticationError(msgUnauthorized)
			}

			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(ctx, user.Principal())))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
