package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and token authentication
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginResult represents a token-auth response
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
	TokenType string `json:"token_type"`
}

// Register creates a new user account with a bcrypt-hashed password. Open
// to unauthenticated callers. Username and email uniqueness is settled by
// the store; the pre-checks here only produce friendlier field errors for
// the common case.
func (s *AuthService) Register(in RegisterInput) (*domain.User, error) {
	ve := domain.NewValidationError()
	if in.Username == "" {
		ve.Add("username", "this field is required")
	}
	if in.Email == "" {
		ve.Add("email", "this field is required")
	}
	if in.Password == "" {
		ve.Add("password", "this field is required")
	} else if len(in.Password) < 8 {
		ve.Add("password", "password must be at least 8 characters")
	}
	if !ve.Empty() {
		return nil, ve
	}

	if existing, err := s.userRepo.GetByUsername(in.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if existing, err := s.userRepo.GetByEmail(in.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login exchanges username/password for a bearer token.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.NewValidationError().Add("username", "username and password are required")
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		s.logger.Info("login attempt with unknown username", slog.String("username", username))
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("username", username))
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{
		Token:     token,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		TokenType: "Bearer",
	}, nil
}
