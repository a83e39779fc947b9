package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/identity"
)

type contextKey string

const sessionKey contextKey = "session"

// Session is the authenticated caller for one request. It is created by the
// session middleware from the provider-issued access token and passed down
// through the request context; there is no ambient global user state.
type Session struct {
	UserID   string
	Email    string
	FullName string
	Role     identity.Role
	Token    string
}

// Claims mirrors the provider's access token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email    string            `json:"email"`
	Metadata identity.Metadata `json:"user_metadata"`
}

// bearerToken extracts the token from a Bearer Authorization header, or ""
// when the header is missing or not bearer-shaped.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// SessionMiddleware verifies the Bearer token against the shared session
// secret and stores the resulting Session in the request context. Paths
// listed in publicPaths pass through unverified.
func SessionMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if SessionSkipper(c) {
				return next(c)
			}

			tokenStr := bearerToken(c.Request())
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sess := &Session{
				UserID:   claims.Subject,
				Email:    claims.Email,
				FullName: claims.Metadata.FullName,
				Role:     claims.Metadata.Role,
				Token:    tokenStr,
			}

			ctx := context.WithValue(c.Request().Context(), sessionKey, sess)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevSessionMiddleware is a permissive middleware for development that
// grants every request a default doctor session. Dev mode has no session
// secret, so presented tokens (such as the opaque ones the in-memory
// provider issues) cannot be verified; they are carried on the session
// as-is instead of being rejected.
func DevSessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if SessionSkipper(c) {
				return next(c)
			}
			sess := &Session{
				UserID:   "dev-user",
				Email:    "dev@localhost",
				FullName: "Dev Doctor",
				Role:     identity.RoleDoctor,
				Token:    bearerToken(c.Request()),
			}
			ctx := context.WithValue(c.Request().Context(), sessionKey, sess)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SessionFromContext retrieves the Session placed by the middleware, or nil
// when the request is unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}

// WithSession returns a context carrying the given session. Used by tests
// and by handlers that construct derived contexts.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}
