package middleware

import "github.com/gin-gonic/gin"

// SecureHeaders sets browser hardening headers on every page.
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		// pages embed conversation text
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
