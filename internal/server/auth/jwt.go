// Package auth issues and verifies the identity tokens carried in the
// hunt cookie, hashes local passwords and verifies Google ID tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries who the caller is. A registered user has UserID; a
// caller that has joined a session also has ParticipantID. A guest has
// only ParticipantID.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"uid,omitempty"`
	ParticipantID string `json:"pid,omitempty"`
}

func GenerateToken(userID, participantID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:        userID,
		ParticipantID: participantID,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
