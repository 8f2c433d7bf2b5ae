// Command admin-token mints a privileged bearer token for the tracker API.
// The token is signed with SECRET_KEY and grants access to the admin-only
// endpoints (patch, status, notes, delete).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/auth"
)

func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity duration")
	flag.Parse()

	if auth.SECRET_KEY == "" {
		log.Fatal("SECRET_KEY is not set")
	}

	token, err := auth.GenerateAdminToken(*ttl)
	if err != nil {
		log.Fatal("failed to sign token: ", err)
	}

	fmt.Println("Admin token generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Token:   %s\n", token)
	fmt.Printf("Expires: %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println("======================================")

	os.Exit(0)
}
