package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

// TokenService verifies bearer tokens issued by an upstream identity
// provider. Unlike the teacher's AuthService, it never issues or refreshes
// tokens; login is out of scope for the scheduler core.
type TokenService struct {
	secret string
}

// NewTokenService constructs a TokenService bound to the signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: secret}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
