package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSecret is returned by NewAuth for an empty signing secret.
var ErrNoSecret = errors.New("admin: jwt secret is empty")

type contextKey struct{ name string }

var subjectCtxKey = &contextKey{"subject"}

// Claims is what admin tokens carry.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Auth verifies HS256 bearer tokens for the admin API.
type Auth struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

func NewAuth(secret []byte, issuer string) (*Auth, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &Auth{secret: secret, issuer: issuer, leeway: 30 * time.Second, now: time.Now}, nil
}

// Issue signs a token for subject valid for ttl.
func (a *Auth) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses raw and returns its claims if the signature, issuer and
// expiry check out.
func (a *Auth) Verify(raw string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(a.leeway),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	var claims Claims
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !tok.Valid || claims.Subject == "" {
		return Claims{}, errors.New("admin: invalid token")
	}
	return claims, nil
}

// Middleware attaches the token's claims to the request context. Requests
// without a token pass through unauthenticated; a bad token is a 401.
func (a *Auth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := a.Verify(strings.TrimSpace(raw))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), subjectCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the verified claims on ctx, if any.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(subjectCtxKey).(Claims)
	return c, ok && c.Subject != ""
}

// Subject names the caller for the access log.
func Subject(r *http.Request) (string, bool) {
	c, ok := ClaimsFrom(r.Context())
	return c.Subject, ok
}

// requireAuth rejects unauthenticated requests. With a nil Auth everything
// is rejected: mutating endpoints are never open by accident.
func requireAuth(a *Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := ClaimsFrom(r.Context()); !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
