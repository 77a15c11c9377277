package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"postboard/internal/models"
)

// TokenTTL is the lifetime of every issued access token.
const TokenTTL = time.Hour

type TokenService interface {
	Issue(userID string) (string, time.Time, error)
	Resolve(token string) (string, error)
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	clock  Clock
}

func NewTokenService(secret string, clock Clock) TokenService {
	if clock == nil {
		clock = RealClock{}
	}
	return &tokenService{secret: []byte(secret), clock: clock}
}

func (s *tokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, models.Validationf("user id is required")
	}

	issuedAt := s.clock.Now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(TokenTTL)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Resolve trusts nothing but the verified payload.
func (s *tokenService) Resolve(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", models.ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", models.WrapError(models.KindExpiredToken, "token expired", err)
		}
		return "", models.WrapError(models.KindInvalidToken, "invalid token", err)
	}

	if claims.UserID == "" {
		return "", models.NewError(models.KindInvalidToken, "token carries no user id")
	}

	return claims.UserID, nil
}
