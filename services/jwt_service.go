package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims vezuje token za identitet korisnika
type Claims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies the access/refresh token pair. Access tokens
// are short-lived; refresh tokens live longer and are persisted on the user
// record (single active session).
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *JWTService) GenerateAccessToken(userID string) (string, error) {
	return s.generate(userID, s.accessSecret, s.accessTTL)
}

func (s *JWTService) GenerateRefreshToken(userID string) (string, error) {
	return s.generate(userID, s.refreshSecret, s.refreshTTL)
}

func (s *JWTService) ValidateAccessToken(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, s.accessSecret)
}

func (s *JWTService) ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, s.refreshSecret)
}

func (s *JWTService) generate(userID string, secret []byte, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *JWTService) parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token has expired")
	}
	return claims, nil
}
