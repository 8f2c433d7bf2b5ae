package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/ratelimit"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/storage"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/workflow"
)

// Default submission quota: 5 creates per 5 minutes per source IP.
const (
	defaultSubmissionQuota  = 5
	defaultSubmissionWindow = 5 * time.Minute
)

// MyServer bundles the shared dependencies handed to route handlers.
type MyServer struct {
	Store  *storage.RecordStore
	Broker *storage.Broker
	Flow   *workflow.Workflow
	Quota  *ratelimit.Limiter
}

// NewServer constructs the http.Server with its dependencies wired from
// the environment.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	bucket := os.Getenv("BUCKET_NAME")
	if bucket == "" {
		log.Fatal("BUCKET_NAME is not set")
	}

	client, err := storage.NewCloudStorageClient(context.Background(), bucket)
	if err != nil {
		log.Fatalf("Cloud storage failed to initialize: %s", err)
	}

	s := &MyServer{
		Store:  storage.NewRecordStore(client),
		Broker: storage.NewBroker(client, envURLTTL()),
		Flow:   workflow.New(envAllowBackward()),
		Quota:  ratelimit.New(envSubmissionQuota()),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func envURLTTL() time.Duration {
	seconds, err := strconv.Atoi(os.Getenv("PRESIGNED_URL_EXPIRY"))
	if err != nil || seconds <= 0 {
		return 900 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// envAllowBackward reads the backward-transition policy; the default is
// permissive, matching the behavior the tracker always had.
func envAllowBackward() bool {
	v := os.Getenv("STATUS_ALLOW_BACKWARD")
	if v == "" {
		return true
	}
	allow, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return allow
}

func envSubmissionQuota() (int, time.Duration) {
	quota, err := strconv.Atoi(os.Getenv("SUBMISSION_RATE_LIMIT"))
	if err != nil || quota <= 0 {
		quota = defaultSubmissionQuota
	}
	window := defaultSubmissionWindow
	if minutes, err := strconv.Atoi(os.Getenv("SUBMISSION_RATE_WINDOW_MINUTES")); err == nil && minutes > 0 {
		window = time.Duration(minutes) * time.Minute
	}
	return quota, window
}
