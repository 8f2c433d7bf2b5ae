package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimit is a middleware that rejects request bodies larger than
// maxBodyBytes. Oversized reads surface as http.MaxBytesError, which the
// JSON binding reports as a 400; binaries never travel through this API,
// so the cap stays small.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		c.Next()
	}
}
