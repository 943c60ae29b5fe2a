package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/nudgely/auth-service/internal/auth/service TokenGenerator

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	autherror "github.com/nudgely/auth-service/internal/errors"
	"github.com/nudgely/auth-service/pkg/constant"
)

type TokenGenerator interface {
	IssuePair(userID, email, sessionID, family string, generation int) (*TokenPair, error)
	Verify(tokenString, expectedType string) (*JWTCustomClaims, error)
	NewTokenFamily() (string, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	TokenType   string `json:"token_type"`
	SessionID   string `json:"session_id"`
	TokenFamily string `json:"family,omitempty"`
	Generation  int    `json:"generation,omitempty"`
}

// TokenService signs and verifies the access/refresh pair. Each token type
// has its own secret, so compromise of one cannot forge the other.
type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: refreshExpiry,
	}
}

func (ts *TokenService) IssuePair(userID, email, sessionID, family string, generation int) (*TokenPair, error) {
	now := time.Now()

	accessClaims := JWTCustomClaims{
		UserID:    userID,
		Email:     email,
		TokenType: constant.TokenTypeAccess,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	refreshClaims := JWTCustomClaims{
		UserID:      userID,
		Email:       email,
		TokenType:   constant.TokenTypeRefresh,
		SessionID:   sessionID,
		TokenFamily: family,
		Generation:  generation,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.RefreshTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(ts.AccessTokenSecret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		refreshClaims).SignedString([]byte(ts.RefreshTokenSecret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(ts.AccessTokenExpiry.Seconds()),
	}, nil
}

// Verify parses and validates a token of the expected type. Failures collapse
// into the typed taxonomy; a parse error we do not recognize is reported as
// malformed rather than propagated raw.
func (ts *TokenService) Verify(tokenString, expectedType string) (*JWTCustomClaims, error) {
	secret := ts.secretFor(expectedType)

	claims, err := ts.parse(tokenString, secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, autherror.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			// A token signed with the other type's secret is a type
			// confusion, not a forgery. Report it as such.
			if other, otherErr := ts.parse(tokenString, ts.secretFor(otherType(expectedType))); otherErr == nil && other.TokenType != expectedType {
				return nil, autherror.ErrTokenWrongType
			}
			return nil, autherror.ErrUnauthenticated
		default:
			return nil, autherror.ErrTokenMalformed
		}
	}

	if claims.TokenType != expectedType {
		return nil, autherror.ErrTokenWrongType
	}

	return claims, nil
}

func (ts *TokenService) parse(tokenString, secret string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func (ts *TokenService) secretFor(tokenType string) string {
	if tokenType == constant.TokenTypeRefresh {
		return ts.RefreshTokenSecret
	}
	return ts.AccessTokenSecret
}

func otherType(tokenType string) string {
	if tokenType == constant.TokenTypeRefresh {
		return constant.TokenTypeAccess
	}
	return constant.TokenTypeRefresh
}

// NewTokenFamily returns a fresh opaque family identifier with 128 bits of
// entropy.
func (ts *TokenService) NewTokenFamily() (string, error) {
	buf := make([]byte, constant.TokenFamilyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token family: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}
