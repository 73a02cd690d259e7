package handlers

import "github.com/gin-gonic/gin"

// HandlerFunc is a gin handler that reports failure by returning it.
type HandlerFunc func(c *gin.Context) error

// Wrap adapts fn to gin. A returned error is attached to the context
// unchanged and the chain is aborted; middleware.ErrorHandler writes the
// response.
func Wrap(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}
