// Package auth issues and verifies stateless session tokens and hashes
// user passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the registered exp/iat claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenManager signs and verifies session tokens with a shared HMAC secret.
// It keeps no state besides the secret; tokens cannot be revoked before
// they expire.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenManager returns a TokenManager that issues tokens valid for validity.
func NewTokenManager(secretKey string, validity time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secretKey), validity: validity, now: time.Now}
}

// WithClock replaces the time source; used by tests to step over expiry.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Validity reports how long issued tokens stay valid.
func (m *TokenManager) Validity() time.Duration {
	return m.validity
}

// Issue builds and signs a token bound to userID.
func (m *TokenManager) Issue(userID string) (string, error) {
	return generateToken(userID, m.secret, m.now(), m.validity)
}

// Verify checks signature, structure and expiry and returns the bound user id.
// A token is rejected at or after its expiry instant.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	return parseToken(tokenString, m.secret, m.now)
}

// GenerateToken signs a token for userID that expires validityDuration from now.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generateToken(userID, secretKey, time.Now(), validityDuration)
}

// GetUserIDFromToken verifies tokenString against secretKey using the wall clock.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	return parseToken(tokenString, secretKey, time.Now)
}

func generateToken(userID string, secretKey []byte, issuedAt time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validity)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func parseToken(tokenString string, secretKey []byte, now func() time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
