package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	operatorTokenType     = "operator"
	operatorTokenAudience = "operator-console"
	operatorSubject       = "operator"
)

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// OperatorTokenManager signs and verifies short-lived HS256 tokens that stand
// in for the operator key on console requests.
type OperatorTokenManager struct {
	issuer string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewOperatorTokenManager(issuer, secret string, ttl time.Duration) *OperatorTokenManager {
	return NewOperatorTokenManagerWithClock(issuer, secret, ttl, time.Now)
}

func NewOperatorTokenManagerWithClock(issuer, secret string, ttl time.Duration, now func() time.Time) *OperatorTokenManager {
	if now == nil {
		now = time.Now
	}
	return &OperatorTokenManager{
		issuer: issuer,
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

func (m *OperatorTokenManager) Sign() (string, time.Time, error) {
	return m.SignWithJTI(uuid.NewString())
}

func (m *OperatorTokenManager) SignWithJTI(jti string) (string, time.Time, error) {
	if jti == "" {
		jti = uuid.NewString()
	}
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := Claims{
		TokenType: operatorTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   operatorSubject,
			Audience:  []string{operatorTokenAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign operator token: %w", err)
	}
	return signed, expiresAt.UTC(), nil
}

func (m *OperatorTokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(operatorTokenAudience),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != operatorTokenType {
		return nil, fmt.Errorf("unexpected token type: %s", claims.TokenType)
	}
	return claims, nil
}
