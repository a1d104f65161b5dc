package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skybook/internal/auth"
	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/models"
)

type AuthService struct {
	users      UserStore
	cache      UserCache
	tokens     *auth.TokenManager
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users UserStore, cache UserCache, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		cache:      cache,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Register creates a user account. Only the last four digits of a card are stored.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if req.CardNumber != nil {
		last4 := cardLast4(*req.CardNumber)
		user.CardLast4 = &last4
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx).Info("User registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Authenticate resolves a bearer token to its active user
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	if s.cache != nil {
		revoked, err := s.cache.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			logger.WithContext(ctx).Warn("Token revocation check failed", "error", err)
		} else if revoked {
			return nil, nil, fmt.Errorf("%w: token was revoked", apperrors.ErrUnauthorized)
		}
	}

	userID, _ := claims.UserID()
	user, err := s.Me(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthorized
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("%w: account is disabled", apperrors.ErrUnauthorized)
	}
	return user, claims, nil
}

// Me returns the user, served from Valkey when cached
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, userID)
		if err != nil {
			logger.WithContext(ctx).Warn("User cache lookup failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, user); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache user", "error", err)
		}
	}
	return user, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.cache == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// UpdateCard stores a new card for the user
func (s *AuthService) UpdateCard(ctx context.Context, userID int64, req *models.UpdateCardRequest) (*models.User, error) {
	if err := s.users.UpdateCard(ctx, userID, cardLast4(req.CardNumber)); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.DeleteUser(ctx, userID); err != nil {
			logger.WithContext(ctx).Warn("Failed to drop cached user", "error", err)
		}
	}
	return s.Me(ctx, userID)
}

func cardLast4(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
