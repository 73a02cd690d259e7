// Package webapp serves the storefront client shell and decides which
// screens a visitor may open.
package webapp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
)

type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the visitor's login state for one request. It changes only on
// login or logout, never inside the gate.
type Session struct {
	State    SessionState
	Identity auth.Identity
}

// SessionFromRequest reads the token the API uses. Missing and invalid
// tokens both yield an anonymous session.
func SessionFromRequest(r *http.Request, tokens *auth.Tokens) Session {
	raw := auth.TokenFromRequest(r)
	if raw == "" {
		return Session{State: Anonymous}
	}
	id, err := tokens.Parse(raw)
	if err != nil {
		return Session{State: Anonymous}
	}
	return Session{State: Authenticated, Identity: id}
}

// Decision is the gate's verdict for one navigation.
type Decision struct {
	Render     bool
	RedirectTo string
}

type Gate struct {
	LoginPath string
}

// Decide renders for an authenticated session and redirects to the login
// screen otherwise.
func (g Gate) Decide(s Session) Decision {
	if s.State == Authenticated {
		return Decision{Render: true}
	}
	return Decision{RedirectTo: g.LoginPath}
}

const sessionKey = "webapp.session"

// Middleware gates everything registered after it. Nothing of the gated
// screen is written when the gate redirects.
func (g Gate) Middleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOf(c, tokens)
		d := g.Decide(s)
		if !d.Render {
			c.Redirect(http.StatusFound, d.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionOf(c *gin.Context, tokens *auth.Tokens) Session {
	if v, ok := c.Get(sessionKey); ok {
		return v.(Session)
	}
	s := SessionFromRequest(c.Request, tokens)
	c.Set(sessionKey, s)
	return s
}
