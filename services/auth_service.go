package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthService выдаёт организатору токен доступа к админским маршрутам.
// Учётка одна — пароль организатора, bcrypt-хеш которого задан в конфиге.
type AuthService interface {
	Login(password string) (string, error)
}

type authService struct {
	adminPasswordHash string
	jwtSecret         []byte
	tokenTTL          time.Duration
}

func NewAuthService(adminPasswordHash, jwtSecret string) AuthService {
	return &authService{
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
		tokenTTL:          24 * time.Hour,
	}
}

func (s *authService) Login(password string) (string, error) {
	if bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "organizer",
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
