// Package jwttoken issues and validates the HS256 access tokens. The user
// id travels in a custom "id" claim.
package jwttoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
)

type Claims struct {
	ID int64 `json:"id"`
	jwt.RegisteredClaims
}

type Manager struct {
	key []byte
	ttl time.Duration
}

func New(signingKey string, ttl time.Duration) *Manager {
	return &Manager{key: []byte(signingKey), ttl: ttl}
}

// CreateToken issues an access token for the user, valid for the
// configured TTL from now.
func (m *Manager) CreateToken(userID domain.UserID, now time.Time) (string, error) {
	claims := Claims{
		ID: userID.Int64(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "token", "Could not sign token")
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry and returns the subject.
func (m *Manager) ValidateToken(tokenString string) (domain.UserID, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token", "Invalid token")
	}
	return domain.UserID(claims.ID), nil
}

// RequesterID extracts the user id from a token whose signature checks out
// even when it has expired. The refresh flow identifies the caller from
// their stale access token and relies on the stored refresh token for
// proof.
func (m *Manager) RequesterID(tokenString string) (domain.UserID, error) {
	claims, err := m.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token", "Invalid token")
	}
	return domain.UserID(claims.ID), nil
}

func (m *Manager) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
