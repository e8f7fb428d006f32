package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("expired credential")
)

// TokenService issues and verifies the bearer credentials required by every
// document-mutating route. Tokens are HS256 JWTs carrying the user id as
// subject plus the account email.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, ttl time.Duration, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.With(zap.String("service", "token_service")),
	}
}

// Issue returns a signed credential for the given user.
func (ts *TokenService) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the credential and returns the subject user id and email.
// Expired tokens are distinguished from otherwise invalid ones.
func (ts *TokenService) Verify(tokenString string) (userID, email string, err error) {
	var claims tokenClaims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrExpiredCredential
		}
		ts.logger.Debug("token rejected", zap.Error(err))
		return "", "", ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", "", ErrInvalidCredential
	}
	return claims.Subject, claims.Email, nil
}
