package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/auth"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/utilities"
)

// RequireAdmin validates a Bearer token in the Authorization header and
// checks it was minted for the admin subject before allowing access to the
// endpoint.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: err.Error(),
			})
			return
		}

		token, err := auth.ValidatedToken(tokenString)

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error:   utilities.KindValidationError,
					Message: "Access token expired",
				})
				return
			}

			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: fmt.Sprintf("Failed to validate token: %s", err.Error()),
			})
			return
		}

		if !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: "Invalid access token",
			})
			return
		}

		claims := token.Claims.(*jwt.RegisteredClaims)

		if claims.Issuer != auth.JwtIssuer {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: "Invalid token issuer",
			})
			return
		}

		if claims.Subject != auth.AdminSubject {
			ctx.AbortWithStatusJSON(http.StatusForbidden, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: "User doesn't have permission to access",
			})
			return
		}

		ctx.Set("admin", true)
		ctx.Next()
	}
}

// IsAdmin reports whether RequireAdmin (or a prior optional check) marked
// the request as privileged.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool("admin")
}

// OptionalAdmin marks the request as privileged when a valid admin token is
// present but lets anonymous callers through for endpoints whose response
// shape merely varies with authorization.
func OptionalAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			ctx.Next()
			return
		}
		token, err := auth.ValidatedToken(tokenString)
		if err != nil || !token.Valid {
			ctx.Next()
			return
		}
		claims := token.Claims.(*jwt.RegisteredClaims)
		if claims.Issuer == auth.JwtIssuer && claims.Subject == auth.AdminSubject {
			ctx.Set("admin", true)
		}
		ctx.Next()
	}
}
