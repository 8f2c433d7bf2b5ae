// Package auth mints and verifies the bearer tokens used by privileged
// endpoints. The managed identity provider in front of the deployment is an
// external collaborator; this is the service's own check.
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

var SECRET_KEY = os.Getenv("SECRET_KEY")

// JwtIssuer identifies tokens minted by this service.
const JwtIssuer = "vgnshlvnz-job-tracker"

// AdminSubject is the subject claim of privileged tokens.
const AdminSubject = "admin"

// GenerateAdminToken signs a privileged token valid for the given duration.
func GenerateAdminToken(ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    JwtIssuer,
		Subject:   AdminSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	signedToken, err := token.SignedString([]byte(SECRET_KEY))
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %s", err)
	}
	return signedToken, nil
}

// ValidatedToken parses and verifies a bearer token string.
func ValidatedToken(encodedToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodedToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return []byte(SECRET_KEY), nil
	})
}
