package token

import (
	"errors"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	UserID   uint           `json:"user_id"`
	UserType model.UserType `json:"user_type"`
	jwt.RegisteredClaims
}

// JWTMaker HS256簽發
type JWTMaker struct {
	secretKey []byte
	duration  time.Duration
}

func NewJWTMaker(secretKey string, duration time.Duration) *JWTMaker {
	return &JWTMaker{secretKey: []byte(secretKey), duration: duration}
}

func (m *JWTMaker) CreateToken(userID uint, userType model.UserType) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

func (m *JWTMaker) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
