package ports

import (
	"context"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

// UserStore persists user accounts. Implementations must enforce uniqueness
// of email and of non-empty phone numbers at the storage layer and report
// violations from Save as domain.ErrDuplicateEmail / domain.ErrDuplicatePhone.
type UserStore interface {
	// FindByEmail and FindByID return domain.ErrUserNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	// Save inserts a new user (ID == 0, an ID is assigned) or replaces an existing one.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}
