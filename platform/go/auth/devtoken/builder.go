// Package devtoken mints unsigned Firebase-shaped ID tokens for AUTH_PROVIDER=dev.
package devtoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultTTL applies when Params.ExpiresIn is zero.
const DefaultTTL = time.Hour

// Params are the claims written into the token. Nothing is read from the environment.
type Params struct {
	ProjectID     string // aud, and the issuer suffix
	UserID        string // user_id and sub
	Email         string
	Name          string
	EmailVerified bool
	Admin         bool // "admin" custom claim
	ExpiresIn     time.Duration
}

func (p Params) validate() error {
	var errs []error
	if strings.TrimSpace(p.ProjectID) == "" {
		errs = append(errs, errors.New("projectID is required"))
	}
	if strings.TrimSpace(p.UserID) == "" {
		errs = append(errs, errors.New("userID is required"))
	}
	if strings.TrimSpace(p.Email) == "" {
		errs = append(errs, errors.New("email is required"))
	}
	return errors.Join(errs...)
}

// Build returns "<header>.<payload>." with alg "none" and an empty signature.
func Build(p Params, now time.Time) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	if now.IsZero() {
		now = time.Now()
	}
	ttl := p.ExpiresIn
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload := map[string]any{
		"iss":            "https://securetoken.google.com/" + p.ProjectID,
		"aud":            p.ProjectID,
		"auth_time":      now.Unix(),
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
		"user_id":        p.UserID,
		"sub":            p.UserID,
		"email":          p.Email,
		"email_verified": p.EmailVerified,
		"admin":          p.Admin,
		"firebase": map[string]any{
			"identities":       map[string]any{"email": []string{p.Email}},
			"sign_in_provider": "password",
		},
	}
	if p.Name != "" {
		payload["name"] = p.Name
	}

	header, err := segment(map[string]any{"alg": "none", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	body, err := segment(payload)
	if err != nil {
		return "", err
	}
	return header + "." + body + ".", nil
}

func segment(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
