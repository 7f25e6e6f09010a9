// Package jwttoken issues and verifies the signed tokens of the auth flows.
// Access and refresh tokens are HS256 JWTs signed with independent secrets,
// so one kind can never be presented in place of the other.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "featstack/pkg/domain-errors"
)

// Claims carried by both access and refresh tokens.
// The user ID travels in the registered "sub" claim.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Codec signs and verifies token pairs.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec builds a Codec from the two signing secrets and their lifetimes.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL reports the configured refresh token lifetime.
// Stores use it to stamp expiry on persisted refresh rows.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccessToken signs a short-lived access token for the user.
func (c *Codec) IssueAccessToken(userID, email, role string) (string, error) {
	return c.sign(userID, email, role, c.accessSecret, c.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (c *Codec) IssueRefreshToken(userID, email, role string) (string, error) {
	return c.sign(userID, email, role, c.refreshSecret, c.refreshTTL)
}

// IssuePair signs a new access/refresh token pair for the user.
func (c *Codec) IssuePair(userID, email, role string) (*TokenPair, error) {
	access, err := c.IssueAccessToken(userID, email, role)
	if err != nil {
		return nil, err
	}
	refresh, err := c.IssueRefreshToken(userID, email, role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (c *Codec) sign(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "user id cannot be empty")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// VerifyAccessToken checks the signature and expiry of an access token.
// A refresh token presented here fails signature verification.
func (c *Codec) VerifyAccessToken(tokenString string) (*Claims, error) {
	return c.verify(tokenString, c.accessSecret)
}

// VerifyRefreshToken checks the signature and expiry of a refresh token.
func (c *Codec) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return c.verify(tokenString, c.refreshSecret)
}

func (c *Codec) verify(tokenString string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing subject")
	}

	return claims, nil
}
