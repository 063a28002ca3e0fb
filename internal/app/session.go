package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
	SessionKeyGuest  = sessionKey("guest")
)

func (s sessionKey) String() string {
	return string(s)
}

type contextKey string

const (
	loggerContextKey = contextKey("logger")
	claimsContextKey = contextKey("claims")
)

const RoleAdmin = "admin"

// AccessClaims are the claims of a bearer token.
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SignAccessToken issues an HS256 bearer token for subject.
func SignAccessToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (app *Application) parseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(app.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	return claims, nil
}

func contextSetClaims(r *http.Request, claims *AccessClaims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsContextKey, claims)
	return r.WithContext(ctx)
}

func contextGetClaims(r *http.Request) (*AccessClaims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(*AccessClaims)
	return claims, ok
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}

// requesterID identifies who is booking: the bearer token subject, then the
// signed in session user, then the guest session token.
func (app *Application) requesterID(r *http.Request) string {
	if claims, ok := contextGetClaims(r); ok && claims.Subject != "" {
		return "user:" + claims.Subject
	}

	if app.sessionManager == nil {
		return ""
	}

	if userID := app.sessionManager.GetString(r.Context(), SessionKeyUserId.String()); userID != "" {
		return "user:" + userID
	}

	if token := app.sessionManager.Token(r.Context()); token != "" {
		return "guest:" + token
	}

	return ""
}
