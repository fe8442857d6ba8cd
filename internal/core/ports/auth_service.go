package ports

import (
	"context"
	"time"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

// RegisterInput carries the fields of a new internal account.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     domain.Role
}

// LoginResult is returned after successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	CurrentUser(ctx context.Context, userID int64) (*domain.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs session tokens for authenticated principals.
type TokenIssuer interface {
	Issue(p domain.Principal) (token string, expiresAt time.Time, err error)
}

// LoginThrottle tracks failed logins per account.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
