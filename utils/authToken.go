package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
)

const (
	AccessTokenExpiry = 24 * time.Hour

	RoleAdmin   = "Admin"
	RoleDoctor  = "Doctor"
	RolePatient = "Patient"
)

var (
	ErrTokenExpired           = errors.New("token expired")
	ErrInsufficientPermission = errors.New("insufficient permissions")
)

// TokenClaims struct represents the data in the token (UserID, Role, Expiry).
type TokenClaims struct {
	UserID string    `json:"userId"`
	Role   string    `json:"role"`
	Expiry time.Time `json:"expiry"`
}

// TokenMaker issues and checks PASETO v2 local tokens with a 32 byte symmetric key.
// Login itself lives outside this service; tokens are minted by the identity
// provider or the issue-token command.
type TokenMaker struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenMaker checks the key length up front instead of on every request.
func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(symmetricKey))
	}
	return &TokenMaker{key: []byte(symmetricKey), expiry: AccessTokenExpiry, now: time.Now}, nil
}

// GenerateAccessToken generates an access token for a user.
func (m *TokenMaker) GenerateAccessToken(userID, role string) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		Expiry: m.now().Add(m.expiry),
	}
	token, err := paseto.NewV2().Encrypt(m.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken validates the given token string and checks for expiry and required roles.
func (m *TokenMaker) ValidateToken(tokenString string, requiredRoles ...string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}

	// If no roles are required, any valid token is acceptable
	if len(requiredRoles) == 0 {
		return &claims, nil
	}
	for _, role := range requiredRoles {
		if claims.Role == role {
			return &claims, nil
		}
	}
	return nil, ErrInsufficientPermission
}

// Encrypt seals an arbitrary payload with the same key. The footer separates payload
// kinds so an access token can never be replayed as another artifact.
func (m *TokenMaker) Encrypt(payload interface{}, footer string) (string, error) {
	token, err := paseto.NewV2().Encrypt(m.key, payload, footer)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt payload: %w", err)
	}
	return token, nil
}

// Decrypt opens a payload sealed by Encrypt and checks its footer.
func (m *TokenMaker) Decrypt(token string, payload interface{}, footer string) error {
	var got string
	if err := paseto.NewV2().Decrypt(token, m.key, payload, &got); err != nil {
		return fmt.Errorf("failed to decrypt payload: %w", err)
	}
	if got != footer {
		return fmt.Errorf("unexpected token footer %q", got)
	}
	return nil
}
