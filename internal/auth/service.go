package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmonkez12/notes-api/internal/logging"
	"github.com/redmonkez12/notes-api/internal/user"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	// ErrInvalidCredentials covers unknown email and wrong password alike,
	// so login responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service handles the register/login/refresh/logout state machine.
// The user's state lives entirely in the stored refresh token: absent means
// logged out, present means one active session.
type Service struct {
	users                UserStore
	tokens               TokenService
	logger               *logging.Logger
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewService(
	users UserStore,
	tokens TokenService,
	logger *logging.Logger,
	accessTokenDuration time.Duration,
	refreshTokenDuration time.Duration,
) *Service {
	return &Service{
		users:                users,
		tokens:               tokens,
		logger:               logger,
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// Register creates a new account and starts a session for it.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, ErrCredentialsRequired
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, string(passwordHash))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, nil, user.ErrDuplicateEmail
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issueTokens(ctx, newUser.ID)
	if err != nil {
		return nil, nil, err
	}

	return newUser, pair, nil
}

// Login verifies credentials and starts a session, replacing any refresh
// token from a previous session.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, ErrCredentialsRequired
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	// bcrypt's compare is constant-time
	if bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, existingUser.ID)
	if err != nil {
		return nil, nil, err
	}

	return existingUser, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair and rotates the
// stored token. The presented token must verify AND match the stored value:
// a syntactically valid but superseded token is rejected, which is what
// makes rotation and logout actually revoke.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.VerifyToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	existingUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*existingUser.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, ErrInvalidToken
	}

	pair, err := s.generateTokens(existingUser.ID)
	if err != nil {
		return nil, err
	}

	// Conditional swap: if a concurrent refresh rotated the token first,
	// this request loses and is treated like any other invalid token.
	if err := s.users.RotateRefreshToken(ctx, existingUser.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, user.ErrStaleRefreshToken) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return pair, nil
}

// Logout clears the stored refresh token for the token's user. It is
// best-effort and idempotent: a missing, expired, or already-cleared token
// is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	userID, err := s.tokens.VerifyToken(refreshToken)
	if err != nil {
		return
	}

	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		s.logger.Warn("failed to clear refresh token on logout", "user_id", userID, "error", err)
	}
}

// UserFromRefreshToken resolves the refresh cookie to a user for the
// session gate. Signature and expiry are checked; the stored-value match is
// deliberately not required here, matching the stateless page-auth path.
func (s *Service) UserFromRefreshToken(ctx context.Context, refreshToken string) (*user.User, error) {
	userID, err := s.tokens.VerifyToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	existingUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return existingUser, nil
}

// RefreshTokenDuration exposes the configured refresh expiry for cookie max-age.
func (s *Service) RefreshTokenDuration() time.Duration {
	return s.refreshTokenDuration
}

// issueTokens creates a pair and persists the refresh half as the user's
// single current token.
func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	pair, err := s.generateTokens(userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, userID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return pair, nil
}

func (s *Service) generateTokens(userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := s.tokens.CreateToken(userID, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokens.CreateToken(userID, s.refreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
