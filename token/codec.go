package token

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// PurposeAccess marks a short-lived API credential.
	PurposeAccess = "access"
	// PurposeRefresh marks a long-lived credential used only to mint new
	// access tokens.
	PurposeRefresh = "refresh"
)

const minKeySize = 32

var (
	// ErrMalformed reports a credential string that cannot be parsed as a
	// signed token or that declares an unknown purpose.
	ErrMalformed = errors.New("malformed token")
	// ErrSignatureInvalid reports a well-formed token whose signature does
	// not verify against the key for its declared purpose.
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Claims is the canonical claim set covered by a token's signature.
type Claims struct {
	UserID  string `json:"userId"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Config holds codec signing material. Keys must be at least 32 bytes and
// must differ between purposes.
type Config struct {
	AccessKey  []byte
	RefreshKey []byte
	Issuer     string
}

// Codec signs and verifies goGuard credential strings.
type Codec struct {
	config Config
}

// NewCodec validates the signing material and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessKey) < minKeySize {
		return nil, fmt.Errorf("access key must be at least %d bytes", minKeySize)
	}
	if len(cfg.RefreshKey) < minKeySize {
		return nil, fmt.Errorf("refresh key must be at least %d bytes", minKeySize)
	}
	if len(cfg.AccessKey) == len(cfg.RefreshKey) &&
		subtle.ConstantTimeCompare(cfg.AccessKey, cfg.RefreshKey) == 1 {
		return nil, errors.New("access and refresh keys must differ")
	}

	return &Codec{config: cfg}, nil
}

// NewClaims builds a claim set for the given identity with the provided
// lifetime anchored at now.
func NewClaims(tokenID, userID, role, purpose string, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		UserID:  userID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Encode signs the claim set with the key for its purpose and returns the
// compact three-segment credential string.
func (c *Codec) Encode(claims *Claims) (string, error) {
	key, err := c.keyFor(claims.Purpose)
	if err != nil {
		return "", err
	}

	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Decode parses the credential string, selects the verification key from the
// purpose the token declares, and verifies the signature. Expiry and store
// membership are explicitly NOT checked here.
func (c *Codec) Decode(signed string) (*Claims, error) {
	purpose, err := peekPurpose(signed)
	if err != nil {
		return nil, err
	}

	key, err := c.keyFor(purpose)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(signed, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrSignatureInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrMalformed
	}
	if claims.ID == "" || claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	return claims, nil
}

func (c *Codec) keyFor(purpose string) ([]byte, error) {
	switch purpose {
	case PurposeAccess:
		return c.config.AccessKey, nil
	case PurposeRefresh:
		return c.config.RefreshKey, nil
	default:
		return nil, fmt.Errorf("%w: unknown purpose %q", ErrMalformed, purpose)
	}
}

// peekPurpose reads the purpose claim without verifying the signature. The
// value is only trusted to pick a verification key; a lie here just makes the
// signature check fail.
func peekPurpose(signed string) (string, error) {
	if bytes.ContainsAny([]byte(signed), " \t\r\n") || signed == "" {
		return "", ErrMalformed
	}

	parser := jwt.NewParser()
	var claims Claims
	if _, _, err := parser.ParseUnverified(signed, &claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return claims.Purpose, nil
}
