package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type contextKey string

const SessionKeyKey contextKey = "session_key"

const (
	// SessionModeAddress keys conversations by client address.
	SessionModeAddress = "address"
	// SessionModeToken keys conversations by a server-issued signed cookie.
	SessionModeToken = "token"

	SessionCookieName = "ms_session"
)

type SessionResolver struct {
	mode         string
	secret       []byte
	secureCookie bool
}

func NewSessionResolver(mode, secret string, secureCookie bool) (*SessionResolver, error) {
	switch mode {
	case "", SessionModeAddress:
		return &SessionResolver{mode: SessionModeAddress}, nil
	case SessionModeToken:
		if secret == "" {
			return nil, fmt.Errorf("session mode %q requires a signing secret", mode)
		}
		return &SessionResolver{mode: mode, secret: []byte(secret), secureCookie: secureCookie}, nil
	default:
		return nil, fmt.Errorf("unknown session mode %q", mode)
	}
}

func (s *SessionResolver) Mode() string { return s.mode }

// Middleware resolves the session key and attaches it to the context
func (s *SessionResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var key string
		if s.mode == SessionModeToken {
			var err error
			key, err = s.sessionFromCookie(w, r)
			if err != nil {
				log.Printf("session: failed to issue token: %v", err)
				writeError(w, http.StatusInternalServerError, "Failed to start session")
				return
			}
		} else {
			key = clientAddress(r)
		}

		ctx := context.WithValue(r.Context(), SessionKeyKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IssueToken creates a new session ID and its signed token.
func (s *SessionResolver) IssueToken() (id, token string, err error) {
	id, err = gonanoid.New()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:  id,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return id, token, nil
}

// ParseToken verifies tokenStr and returns the session ID it carries.
func (s *SessionResolver) ParseToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}

// sessionFromCookie returns the session carried by the request cookie, or
// starts a new one and sets its cookie when the cookie is missing or invalid.
func (s *SessionResolver) sessionFromCookie(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := s.ParseToken(c.Value); err == nil {
			return id, nil
		}
	}

	id, token, err := s.IssueToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// clientAddress is the request's remote host without its port. Behind
// chimiddleware.RealIP this is the forwarded client address.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetSessionKey extracts the session key from request context
func GetSessionKey(ctx context.Context) string {
	key, _ := ctx.Value(SessionKeyKey).(string)
	return key
}
