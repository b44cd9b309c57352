package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calculadrink/platform/internal/domain"
)

// Claims carried by a session token. SessionVersion is the company's session
// counter at login time; bumping the counter server-side invalidates every
// token minted before the bump.
type Claims struct {
	CompanyID      string      `json:"company_id"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	Master         bool        `json:"master"`
	SessionVersion int64       `json:"session_version"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates session tokens.
type TokenManager struct {
	secret string
	issuer string
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret, issuer string) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "calculadrink"
	}
	return &TokenManager{secret: secret, issuer: issuer}
}

// GenerateToken mints a session token for a resolved company login.
func (tm *TokenManager) GenerateToken(companyID, email string, role domain.Role, master bool, sessionVersion int64, expiresIn time.Duration) (string, error) {
	if companyID == "" {
		return "", fmt.Errorf("company_id required")
	}
	now := time.Now()
	claims := Claims{
		CompanyID:      companyID,
		Email:          email,
		Role:           role,
		Master:         master,
		SessionVersion: sessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secret))
}

// ValidateToken parses and verifies a session token.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
