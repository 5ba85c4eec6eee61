// Package auth verifies administrator credentials: HS256 ID tokens whose
// email is on the allow-list, or static API keys for automation.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/schemefinder/internal/domain"
)

// Method is how a principal authenticated.
type Method string

// Authentication methods.
const (
	MethodToken  Method = "token"
	MethodAPIKey Method = "api_key"
)

// Principal is an authenticated administrator.
type Principal struct {
	Subject string
	Email   string
	Method  Method
}

// Claims are the ID token claims the verifier reads.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Config configures a Verifier.
type Config struct {
	Secret        string
	Issuer        string
	Audience      string
	AllowedEmails []string
	APIKeys       []string
	ClockSkew     time.Duration
}

// Verifier authenticates bearer credentials.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	allowed  map[string]struct{}
	apiKeys  [][]byte
	skew     time.Duration
	now      func() time.Time
}

// NewVerifier builds a verifier. With neither a secret nor API keys every
// credential is rejected.
func NewVerifier(cfg Config) *Verifier {
	v := &Verifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		allowed:  make(map[string]struct{}, len(cfg.AllowedEmails)),
		skew:     cfg.ClockSkew,
		now:      time.Now,
	}
	for _, e := range cfg.AllowedEmails {
		if e = normalizeEmail(e); e != "" {
			v.allowed[e] = struct{}{}
		}
	}
	for _, k := range cfg.APIKeys {
		if k != "" {
			v.apiKeys = append(v.apiKeys, []byte(k))
		}
	}
	return v
}

// Enabled reports whether any credential can ever pass.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0 || len(v.apiKeys) > 0
}

// Authenticate checks a bearer credential. API keys are tried first,
// then the value is parsed as an ID token.
func (v *Verifier) Authenticate(_ context.Context, credential string) (Principal, error) {
	if credential == "" {
		return Principal{}, fmt.Errorf("%w: empty credential", domain.ErrUnauthorized)
	}
	for _, k := range v.apiKeys {
		if subtle.ConstantTimeCompare(k, []byte(credential)) == 1 {
			return Principal{Subject: "api-key", Method: MethodAPIKey}, nil
		}
	}
	if len(v.secret) == 0 {
		return Principal{}, fmt.Errorf("%w: invalid api key", domain.ErrUnauthorized)
	}

	claims, err := v.parse(credential)
	if err != nil {
		return Principal{}, err
	}
	email := normalizeEmail(claims.Email)
	if email == "" {
		return Principal{}, fmt.Errorf("%w: token has no email", domain.ErrUnauthorized)
	}
	if _, ok := v.allowed[email]; !ok {
		return Principal{}, fmt.Errorf("%w: %s is not an administrator", domain.ErrForbidden, email)
	}
	return Principal{Subject: claims.Subject, Email: email, Method: MethodToken}, nil
}

func (v *Verifier) parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.skew),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, fmt.Errorf("%w: token not valid yet", domain.ErrUnauthorized)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: invalid token signature", domain.ErrUnauthorized)
		default:
			return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Issue signs an ID token for email. Used by tooling and tests.
func (v *Verifier) Issue(email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	now := v.now()
	claims := Claims{
		Email:         normalizeEmail(email),
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   normalizeEmail(email),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

type principalKey struct{}

// WithPrincipal stores the principal in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Actor names the principal for audit fields.
func (p Principal) Actor() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Subject
}
