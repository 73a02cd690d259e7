package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperror"
)

// TokenFromRequest reads the bearer token, falling back to the session
// cookie. It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Protect requires a valid token and stores the caller's identity in the
// request context.
func Protect(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := TokenFromRequest(c.Request)
		if raw == "" {
			abort(c, apperror.Unauthorized("Not authorized, no token"))
			return
		}

		id, err := tokens.Parse(raw)
		if err != nil {
			abort(c, &apperror.Error{
				Kind:    apperror.KindUnauthorized,
				Message: "Not authorized, token failed",
				Err:     err,
			})
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// Admin must run after Protect.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c.Request.Context())
		if !ok || !id.IsAdmin {
			abort(c, apperror.Unauthorized("Not authorized as admin"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
