package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Access tokens are short-lived and carried on every request; refresh tokens
// live longer and are only accepted by the refresh endpoint, where their
// stored record is checked and rotated.
const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is what a Reelhouse session token carries: the platform user id,
// whether the user may reach the admin console, and for refresh tokens the
// id of the stored record backing it.
type Claims struct {
	UserID    string `json:"userId"`
	Admin     bool   `json:"admin"`
	TokenID   string `json:"jti"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a short-lived token identifying the user on
// ordinary requests.
func GenerateAccessToken(secret, userID string, admin bool) (string, error) {
	return signToken(secret, Claims{
		UserID:    userID,
		Admin:     admin,
		TokenType: tokenTypeAccess,
	}, AccessTokenDuration)
}

// GenerateRefreshToken signs a long-lived token tied to the stored refresh
// record identified by tokenID, so it can be revoked server-side.
func GenerateRefreshToken(secret, userID string, admin bool, tokenID string) (string, error) {
	return signToken(secret, Claims{
		UserID:    userID,
		Admin:     admin,
		TokenID:   tokenID,
		TokenType: tokenTypeRefresh,
	}, RefreshTokenDuration)
}

func signToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        claims.TokenID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(secret))
}

// ValidateToken parses and verifies a session token. Only HMAC signatures
// under our secret are accepted; expiry is enforced by the parser.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
