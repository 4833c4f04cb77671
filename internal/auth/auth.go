package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
)

// Manager provides password hashing and token issuance for the signup/login
// glue around the ranking core.
type Manager struct {
	secret []byte
	ttl    time.Duration
	cost   int
}

// NewManager creates a new auth manager
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		cost:   cfg.BcryptCost,
	}
}

// HashPassword returns the bcrypt hash of a password
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether a password matches a stored hash
func (m *Manager) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a short-lived HS256 token identifying a player
func (m *Manager) IssueToken(playerID uuid.UUID, name string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  playerID.String(),
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns the player id it identifies
func (m *Manager) ParseToken(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	playerID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	return playerID, nil
}
