// Package auth verifies Firebase ID tokens and exposes the caller on the request context.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/concoro/concoro-platform/platform/go/problem"
)

// AdminClaim is the custom claim that grants access to administrative endpoints.
const AdminClaim = "admin"

// legacyAdminClaim is still set on older accounts.
const legacyAdminClaim = "isAdmin"

type ctxKey struct{}

// Principal is the authenticated caller.
type Principal struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Admin         bool
}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the caller, if the request carried a valid token.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}

// VerifyFunc validates a raw token and returns its claims.
type VerifyFunc func(ctx context.Context, token string) (map[string]any, error)

// Authenticate resolves the bearer token, when present, into a Principal on the context.
// Requests without a token pass through untouched; invalid tokens get a 401.
func Authenticate(verify VerifyFunc) func(http.Handler) http.Handler {
	if verify == nil {
		panic("auth.Authenticate: verify func must not be nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, found := ExtractJWTToken(r)
			if !found || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verify(r.Context(), token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="concoro", error="invalid_token"`)
				problem.Write(w, problem.New(http.StatusUnauthorized, problem.TypeUnauthorized, "", "invalid bearer token"))
				return
			}

			principal, err := PrincipalFromClaims(claims)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="concoro", error="invalid_token"`)
				problem.Write(w, problem.New(http.StatusUnauthorized, problem.TypeUnauthorized, "", err.Error()))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects callers without the admin claim.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="concoro"`)
			problem.Write(w, problem.New(http.StatusUnauthorized, problem.TypeUnauthorized, "", "authentication required"))
			return
		}
		if !p.Admin {
			problem.Write(w, problem.New(http.StatusForbidden, problem.TypeForbidden, "", "admin claim required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromClaims maps Firebase ID token claims onto a Principal.
func PrincipalFromClaims(claims map[string]any) (*Principal, error) {
	if claims == nil {
		return nil, errors.New("missing claims")
	}

	uid := firstStringClaim(claims, "uid", "user_id", "sub")
	if uid == "" {
		return nil, errors.New("token has no subject")
	}

	return &Principal{
		UID:           uid,
		Email:         firstStringClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          firstStringClaim(claims, "name"),
		Admin:         boolClaim(claims, AdminClaim) || boolClaim(claims, legacyAdminClaim),
	}, nil
}

// ExtractJWTToken reads a case-insensitive "Bearer" Authorization header.
func ExtractJWTToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// FirebaseTokenVerifier validates tokens with Firebase Auth.
func FirebaseTokenVerifier(client *firebaseauth.Client) VerifyFunc {
	return func(ctx context.Context, token string) (map[string]any, error) {
		t, err := client.VerifyIDToken(ctx, token)
		if err != nil {
			return nil, err
		}
		claims := make(map[string]any, len(t.Claims)+2)
		for k, v := range t.Claims {
			claims[k] = v
		}
		claims["uid"] = t.UID
		claims["sub"] = t.Subject
		return claims, nil
	}
}

// UnsignedTokenVerifier decodes the payload without checking the signature.
// Only wired when AUTH_PROVIDER=dev.
func UnsignedTokenVerifier() VerifyFunc {
	return func(_ context.Context, token string) (map[string]any, error) {
		parts := strings.Split(token, ".")
		if len(parts) < 2 {
			return nil, errors.New("invalid token format")
		}
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
		if err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		claims := make(map[string]any)
		if err := json.Unmarshal(decoded, &claims); err != nil {
			return nil, fmt.Errorf("unmarshal claims: %w", err)
		}
		return claims, nil
	}
}

func firstStringClaim(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func boolClaim(claims map[string]any, key string) bool {
	v, ok := claims[key].(bool)
	return ok && v
}
