package middleware

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
)

const AuthKey = "auth"

// LoadAuth resolves the browser's token once per request and stores the
// resulting auth.Context under AuthKey. A store failure is logged and the
// request continues unauthenticated.
func LoadAuth(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, err := m.Load(c.Request)
		if err != nil {
			log.Printf("[Auth] load token failed rid=%s err=%v", RequestIDFrom(c), err)
		}
		c.Set(AuthKey, ac)
		c.Next()
	}
}

// AuthFrom never returns nil.
func AuthFrom(c *gin.Context) *auth.Context {
	if v, ok := c.Get(AuthKey); ok {
		if ac, ok := v.(*auth.Context); ok && ac != nil {
			return ac
		}
	}
	return &auth.Context{}
}

// RequireToken guards protected pages. Without a token, GET requests are sent
// to the login page with the requested URI as next; other methods go to the
// plain login page.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if AuthFrom(c).Authenticated() {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
		} else {
			c.Redirect(http.StatusSeeOther, LoginURL(""))
		}
		c.Abort()
	}
}

func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
