package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/directory"
	"github.com/golang-jwt/jwt/v5"
)

// Service is the main auth service with dependencies
type Service struct {
	users          UserLookup
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
}

// NewService creates a new auth service
func NewService(users UserLookup, tokenGen TokenGeneratorAPI, bcryptCost int) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		return AuthTokens{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !u.IsActiveUser() {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(strconv.FormatInt(u.ID, 10), u.Email)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.ResolveCaller(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(claims.UserID, u.Email)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString, TokenTypeAccess)
}

// ResolveCaller loads the active user named by token claims.
func (s *Service) ResolveCaller(ctx context.Context, claims *Claims) (*directory.User, error) {
	uid, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.IsActiveUser() {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issueTokens(userID, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID string, email string) (string, error) {
	return j.sign(userID, email, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID string, email string) (string, error) {
	return j.sign(userID, email, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID, email, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token of the given type and returns its claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string, tokenType string) (*Claims, error) {
	secret := j.AccessTokenSecret
	if tokenType == TokenTypeRefresh {
		secret = j.RefreshTokenSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
