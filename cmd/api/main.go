package main

import (
	"log"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/server"
)

func main() {
	srv := server.NewServer()

	log.Printf("Listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server stopped: %s", err)
	}
}
