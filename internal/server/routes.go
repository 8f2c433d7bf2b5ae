// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/controller"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/middleware"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
)

// maxJSONBody caps create/update payloads; binaries travel through
// presigned URLs, never through this API.
const maxJSONBody = 64 << 10

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrgins := strings.Split(allowOrginsStr, ",")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrgins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.SafeHeader())
	r.Use(middleware.EnvRateLimitMiddleware())

	r.GET("/health", s.healthHandler)

	applications := controller.NewRecordController(model.KindApplication, s.Store, s.Broker, s.Flow)
	submissions := controller.NewRecordController(model.KindSubmission, s.Store, s.Broker, s.Flow)

	v1 := r.Group("/api/v1")
	{
		registerRecordRoutes(v1.Group("/applications"), s, applications)
		registerRecordRoutes(v1.Group("/recruiter-submissions"), s, submissions)
	}

	return r
}

func registerRecordRoutes(g *gin.RouterGroup, s *MyServer, rc *controller.RecordController) {
	// Public surface. Recruiters have no account, so creation stays open
	// and is quota-guarded per source IP instead.
	g.POST("", middleware.SubmissionQuota(s.Quota), middleware.SizeLimit(maxJSONBody), rc.Create)
	g.GET("", rc.List)
	g.GET("/:id", middleware.OptionalAdmin(), rc.Get)
	g.POST("/:id/cv-upload-url", middleware.SubmissionQuota(s.Quota), rc.ReissueUploadURL)

	// Privileged surface.
	needAdmin := g.Group("")
	{
		needAdmin.Use(middleware.RequireAdmin())
		needAdmin.PUT("/:id", middleware.SizeLimit(maxJSONBody), rc.Update)
		needAdmin.PUT("/:id/status", middleware.SizeLimit(maxJSONBody), rc.UpdateStatus)
		needAdmin.PUT("/:id/notes", middleware.SizeLimit(maxJSONBody), rc.UpdateNotes)
		needAdmin.DELETE("/:id", rc.Delete)
	}
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
