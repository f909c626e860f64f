package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/common"
)

// Recovery replaces gin.Recovery: HTML clients get the error page, JSON
// clients get the common envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC_RECOVERED | method=%s path=%s rid=%s error=%v\n%s",
					c.Request.Method, c.Request.URL.Path, RequestIDFrom(c), err, debug.Stack())

				if c.Writer.Written() {
					c.Abort()
					return
				}
				if strings.Contains(c.GetHeader("Accept"), "application/json") {
					common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
					return
				}
				c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
					"Title":   "Error",
					"Auth":    AuthFrom(c),
					"Message": "Something went wrong. Please try again.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
