package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/haripriya/clinic-backend/internal/api/metrics"
	"github.com/haripriya/clinic-backend/internal/auth"
	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountInactive    = "User account is inactive"
	msgExternalProvider   = "This account uses a different authentication method"
	msgTooManyAttempts    = "Too many failed login attempts, try again later"

	msgPatientRegistration = "Patient registration is not allowed through this endpoint"
	msgEmailExists         = "Email already exists"
	msgPhoneExists         = "Phone number already exists"
)

// AuthOptions holds the optional collaborators of AuthService.
type AuthOptions struct {
	// Throttle limits repeated failed logins per account. Nil disables it.
	Throttle ports.LoginThrottle
	// Audit receives login and registration events. Nil disables auditing.
	Audit ports.AuditSink
	// DiscloseAccountState returns distinct messages for inactive accounts and
	// accounts using another authentication method instead of the generic
	// invalid-credentials message.
	DiscloseAccountState bool
}

// AuthService verifies credentials, issues session tokens and registers
// internal accounts.
type AuthService struct {
	users    ports.UserStore
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	throttle ports.LoginThrottle
	audit    ports.AuditSink
	disclose bool
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users ports.UserStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts AuthOptions,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: opts.Throttle,
		audit:    opts.Audit,
		disclose: opts.DiscloseAccountState,
		log:      log,
		now:      time.Now,
	}
}

// Login authenticates email/password. Checks run in a fixed order: account
// exists, password matches, account is active, account uses the internal
// password scheme. Unknown email and wrong password are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewAuthenticationError(msgInvalidCredentials)
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("login throttle check failed, continuing")
		} else if blocked {
			s.record(ports.AuthEvent{Type: ports.AuthEventLoginFailed, Email: email, Reason: "throttled"})
			return nil, &domain.Error{Kind: domain.ErrTooManyAttempts, Message: msgTooManyAttempts}
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: find user: %w", err)
		}
		// Spend the same bcrypt work as a real mismatch.
		s.hasher.Verify(password, "")
		return nil, s.loginFailed(ctx, email, 0, "unknown_email", msgInvalidCredentials)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, email, user.ID, "bad_password", msgInvalidCredentials)
	}

	if !user.Active {
		return nil, s.loginFailed(ctx, email, user.ID, "inactive", s.stateMessage(msgAccountInactive))
	}

	if !user.AuthProvider.IsInternal() {
		return nil, s.loginFailed(ctx, email, user.ID, "external_provider", s.stateMessage(msgExternalProvider))
	}

	token, expiresAt, err := s.tokens.Issue(user.Principal())
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login throttle")
		}
	}
	s.record(ports.AuthEvent{Type: ports.AuthEventLoginSucceeded, Email: email, UserID: user.ID})
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string, userID int64, reason, msg string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
		}
	}
	s.record(ports.AuthEvent{Type: ports.AuthEventLoginFailed, Email: email, UserID: userID, Reason: reason})
	metrics.AuthLoginFailuresTotal.WithLabelValues(reason).Inc()
	s.log.Warn().Str("email", email).Str("reason", reason).Msg("login failed")
	return domain.NewAuthenticationError(msg)
}

func (s *AuthService) stateMessage(specific string) string {
	if s.disclose {
		return specific
	}
	return msgInvalidCredentials
}

// Register creates an internal account. The caller must already be
// authorised as an administrator; PATIENT accounts cannot be created here.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Role == domain.RolePatient {
		return nil, domain.NewValidationError(msgPatientRegistration)
	}
	if !input.Role.Valid() {
		return nil, domain.NewValidationError("Invalid role")
	}

	email := domain.NormalizeEmail(input.Email)
	phone := strings.TrimSpace(input.Phone)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: check email: %w", err)
	}
	if exists {
		return nil, domain.NewValidationError(msgEmailExists)
	}

	if phone != "" {
		exists, err := s.users.ExistsByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("register: check phone: %w", err)
		}
		if exists {
			return nil, domain.NewValidationError(msgPhoneExists)
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	saved, err := s.users.Save(ctx, &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         input.Role,
		AuthProvider: domain.AuthProviderInternal,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return nil, domain.NewValidationError(msgEmailExists)
	case errors.Is(err, domain.ErrDuplicatePhone):
		return nil, domain.NewValidationError(msgPhoneExists)
	case err != nil:
		return nil, fmt.Errorf("register: save user: %w", err)
	}

	event := ports.AuthEvent{Type: ports.AuthEventUserRegistered, Email: saved.Email, UserID: saved.ID}
	if actor, ok := auth.PrincipalFromContext(ctx); ok {
		event.ActorID = actor.UserID
	}
	s.record(event)
	s.log.Info().Int64("user_id", saved.ID).Str("role", string(saved.Role)).Msg("user registered")

	return saved, nil
}

// EnsureAdmin creates an ADMIN account for email unless one with that email
// already exists. It bootstraps a fresh deployment, since Register itself
// requires an administrator.
func (s *AuthService) EnsureAdmin(ctx context.Context, fullName, email, password string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	if _, err := s.Register(ctx, ports.RegisterInput{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}

// CurrentUser returns the account with the given id.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("User not found with id: %d", userID))
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

func (s *AuthService) record(event ports.AuthEvent) {
	if s.audit == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	s.audit.Record(event)
}
