package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified (user id, display name) pair the session core
// consumes after the auth handshake.
type Identity struct {
	UserID   string
	Username string
}

// TokenConfig holds the JWT issuance parameters.
type TokenConfig struct {
	Issuer   string
	Audience string
	TTL      time.Duration
	Secret   []byte
}

// TokenService issues and verifies the HS256 tokens used by the websocket
// handshake.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a token service from the given config.
func NewTokenService(config TokenConfig) *TokenService {
	return &TokenService{config: config}
}

// Generate signs a token carrying the user's id and display name.
func (s *TokenService) Generate(user *User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":      s.config.Issuer,
		"aud":      s.config.Audience,
		"iat":      now.Unix(),
		"exp":      now.Add(s.config.TTL).Unix(),
		"userId":   user.ID,
		"username": user.Username,
	})
	return token.SignedString(s.config.Secret)
}

// Parse verifies a token string and extracts the identity it carries.
func (s *TokenService) Parse(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.config.Secret, nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithAudience(s.config.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, _ := claims["userId"].(string)
	username, _ := claims["username"].(string)
	if userID == "" || username == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: userID, Username: username}, nil
}
