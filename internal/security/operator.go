package security

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidOperatorCredential = errors.New("invalid operator credential")

// OperatorAuthenticator checks the shared operator key. The configured key may
// be a bcrypt hash, in which case presented keys are compared against it.
type OperatorAuthenticator struct {
	key    []byte
	hashed bool
	tokens *OperatorTokenManager
}

func NewOperatorAuthenticator(key string, tokens *OperatorTokenManager) *OperatorAuthenticator {
	return &OperatorAuthenticator{
		key:    []byte(key),
		hashed: IsBcryptHash(key),
		tokens: tokens,
	}
}

func IsBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func HashOperatorKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *OperatorAuthenticator) VerifyKey(presented string) error {
	if presented == "" || len(a.key) == 0 {
		return ErrInvalidOperatorCredential
	}
	if a.hashed {
		if err := bcrypt.CompareHashAndPassword(a.key, []byte(presented)); err != nil {
			return ErrInvalidOperatorCredential
		}
		return nil
	}
	if subtle.ConstantTimeCompare(a.key, []byte(presented)) != 1 {
		return ErrInvalidOperatorCredential
	}
	return nil
}

func (a *OperatorAuthenticator) VerifyToken(raw string) (*Claims, error) {
	if raw == "" || a.tokens == nil {
		return nil, ErrInvalidOperatorCredential
	}
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidOperatorCredential, err)
	}
	return claims, nil
}

// IssueToken exchanges a valid operator key for a signed operator token.
func (a *OperatorAuthenticator) IssueToken(presented string) (string, time.Time, error) {
	if err := a.VerifyKey(presented); err != nil {
		return "", time.Time{}, err
	}
	if a.tokens == nil {
		return "", time.Time{}, ErrInvalidOperatorCredential
	}
	return a.tokens.Sign()
}
