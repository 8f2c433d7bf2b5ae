package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/ratelimit"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/utilities"
)

// SubmissionQuota guards the unauthenticated create endpoints with a
// sliding-window quota per source IP. Counters live in this process only;
// parallel instances each enforce their own window.
func SubmissionQuota(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := limiter.Admit(c.ClientIP())
		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", fmt.Sprint(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utilities.ErrorResponse{
				Error:   utilities.KindRateLimitExceeded,
				Message: fmt.Sprintf("Submission limit reached. Retry in %d seconds.", seconds),
			})
			return
		}
		c.Next()
	}
}
