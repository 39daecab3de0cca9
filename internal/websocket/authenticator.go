package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"forms-service/internal/auth"
	"forms-service/internal/models"
)

var ErrNoCredential = errors.New("no credential presented")

// SessionResolver turns a verified token into the identity of its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (models.Session, error)
}

// Authenticator validates the credential presented on the upgrade request.
type Authenticator struct {
	sessions     SessionResolver
	cookieSecret string
}

func NewAuthenticator(sessions SessionResolver, cookieSecret string) *Authenticator {
	return &Authenticator{sessions: sessions, cookieSecret: cookieSecret}
}

// Credential picks the token in order: signed jwt cookie, plain jwt cookie, then the
// token query parameter or Authorization bearer header.
func (a *Authenticator) Credential(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		raw := auth.UnescapeCookie(cookie.Value)
		if auth.IsSignedCookie(raw) {
			if value, ok := auth.UnsignCookie(raw, a.cookieSecret); ok {
				return value
			}
		} else {
			return raw
		}
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Authenticate resolves the request's credential to a session.
func (a *Authenticator) Authenticate(r *http.Request) (models.Session, error) {
	token := a.Credential(r)
	if token == "" {
		return models.Session{}, ErrNoCredential
	}
	return a.sessions.ResolveSession(r.Context(), token)
}
