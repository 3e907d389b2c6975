package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope declares what a token may be used for. Every decode site matches
// exhaustively against these constants; a token presented outside its scope
// is rejected with ErrWrongScope.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	ScopeEmail   Scope = "email_token"
)

// Claims is the flat claim set carried by every token this service signs.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Scope     Scope
}

type wireClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Codec signs and verifies compact header.claims.signature tokens with a
// single symmetric secret and algorithm, both fixed at construction. It
// holds no mutable state and is shared freely across goroutines.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

func NewCodec(secret, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not symmetric", algorithm)
	}
	return &Codec{secret: []byte(secret), method: method}, nil
}

// Encode signs claims. Each token carries a random jti so that two tokens
// minted for the same subject in the same second still differ; stored
// refresh and reset tokens are compared byte for byte and must be unique.
func (c *Codec) Encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, wireClaims{
		Scope: string(claims.Scope),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(c.secret)
}

// Decode verifies tokenStr and returns its claims. Expiry is checked before
// the signature so an expired token always fails with ErrExpired, even when
// it was signed with a different secret.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	var unverified wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &unverified); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if unverified.ExpiresAt == nil || unverified.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing iat/exp claim", ErrMalformed)
	}
	if time.Now().After(unverified.ExpiresAt.Time) {
		return Claims{}, ErrExpired
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{c.method.Alg()}))
	var verified wireClaims
	token, err := parser.ParseWithClaims(tokenStr, &verified, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return Claims{
		Subject:   verified.Subject,
		IssuedAt:  verified.IssuedAt.Time,
		ExpiresAt: verified.ExpiresAt.Time,
		Scope:     Scope(verified.Scope),
	}, nil
}
