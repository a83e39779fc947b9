package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass session verification: the health
// check and the auth endpoints themselves. Sign-in and sign-up must be
// reachable without a token or no one could ever obtain one; sign-out
// validates its own bearer header against the provider.
var publicPaths = map[string]bool{
	"/health":           true,
	"/api/auth/signin":  true,
	"/api/auth/signup":  true,
	"/api/auth/signout": true,
}

// SessionSkipper reports whether the request path should skip the session
// middleware.
func SessionSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}
