package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"newsletter/internal/cache"
	"newsletter/internal/config"
	"newsletter/internal/middleware"
	"newsletter/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	tokenIssuer   = "newsletter-api"
	tokenAudience = "newsletter-client"
)

// Claims are the JWT claims issued for both access and refresh tokens.
type Claims struct {
	Username string `json:"username"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid subject claim")
	}
	return uint(id), nil
}

// TokenPair is returned by every credential exchange.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and verifies HS256 tokens. Revoked token ids live in Redis.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
	}
}

// IssuePair creates a fresh access and refresh token for user.
func (s *TokenService) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user.ID, user.Username, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, user.Username, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) sign(userID uint, username, typ string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	now := time.Now()
	claims := Claims{
		Username: username,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates signature, issuer, audience and expiry. An empty typ accepts either type.
func (s *TokenService) Parse(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, models.NewUnauthorizedError("Token is invalid or expired")
	}
	if typ != "" && claims.Type != typ {
		return nil, models.NewUnauthorizedError("Token has wrong type")
	}
	return claims, nil
}

// verify parses the token and rejects revoked ids. Redis failures fail open.
func (s *TokenService) verify(ctx context.Context, tokenString, typ string) (*Claims, error) {
	claims, err := s.Parse(tokenString, typ)
	if err != nil {
		return nil, err
	}
	revoked, err := cache.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}
	return claims, nil
}

// VerifyAccessToken implements middleware.TokenVerifier.
func (s *TokenService) VerifyAccessToken(ctx context.Context, tokenString string) (uint, error) {
	claims, err := s.verify(ctx, tokenString, TokenTypeAccess)
	if err != nil {
		return 0, err
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, models.NewUnauthorizedError("Token is invalid or expired")
	}
	return id, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	id, err := claims.UserID()
	if err != nil {
		return "", models.NewUnauthorizedError("Token is invalid or expired")
	}
	return s.sign(id, claims.Username, TokenTypeAccess, s.accessTTL)
}

// Revoke blacklists the token id until the token expires. Without Redis it is a no-op.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.Parse(tokenString, "")
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := cache.RevokeToken(ctx, claims.ID, ttl); err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			middleware.Logger.WarnContext(ctx, "token revocation skipped: redis unavailable")
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}
