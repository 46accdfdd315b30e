package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-chain"
)

// AuthField carries the identity an Auth unit attaches to the context.
// Downstream units and the terminal handler read it with AuthField.From.
var AuthField = chain.NewField[Identity]("auth", "authenticated caller identity")

// ErrCodeUnauthorized classifies calls rejected by the Auth unit.
const ErrCodeUnauthorized = "UNAUTHORIZED"

// Identity is the authenticated principal extracted from a bearer token.
type Identity struct {
	Subject string         `json:"subject"`
	Claims  map[string]any `json:"claims,omitempty"`
}

// Auth validates an HS256 bearer token and extends the context with the
// caller identity. Calls without a valid token are rejected before the rest
// of the chain runs; the terminal handler is never invoked.
type Auth struct {
	secret []byte
	header string
}

// AuthOption customizes the auth unit.
type AuthOption func(*Auth)

// WithAuthHeader overrides the header carrying the bearer token.
func WithAuthHeader(name string) AuthOption {
	return func(a *Auth) {
		if name != "" {
			a.header = name
		}
	}
}

// NewAuth builds an auth unit verifying tokens signed with secret.
func NewAuth(secret []byte, opts ...AuthOption) *Auth {
	a := &Auth{
		secret: secret,
		header: "authorization",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Auth) Name() string { return "auth" }

func (a *Auth) Extends() []chain.FieldSpec {
	return []chain.FieldSpec{AuthField.Spec()}
}

func (a *Auth) Handle(ctx context.Context, cc *chain.Context, next chain.Next) chain.Outcome {
	raw := strings.TrimSpace(cc.Header(a.header))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return chain.Reject(ErrCodeUnauthorized, "missing bearer token")
	}

	identity, err := a.validate(raw)
	if err != nil {
		return chain.Reject(ErrCodeUnauthorized, "invalid bearer token")
	}

	return next(ctx, AuthField.Patch(identity))
}

func (a *Auth) validate(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("invalid claims")
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return Identity{}, fmt.Errorf("missing subject claim")
	}

	return Identity{
		Subject: subject,
		Claims:  map[string]any(claims),
	}, nil
}

// Token creates a signed token for subject, valid for ttl. Useful for tests
// and local tooling.
func (a *Auth) Token(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
