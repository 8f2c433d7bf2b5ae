// Package controller provides HTTP handlers for tracker record operations.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/storage"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/utilities"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/workflow"
)

// RecordController handles the endpoints of one record flavor. Two
// instances are registered: one for applications, one for recruiter
// submissions.
type RecordController struct {
	Kind   model.Kind
	Store  *storage.RecordStore
	Broker *storage.Broker
	Flow   *workflow.Workflow
}

// NewRecordController creates a controller bound to one record kind.
func NewRecordController(kind model.Kind, store *storage.RecordStore, broker *storage.Broker, flow *workflow.Workflow) *RecordController {
	return &RecordController{
		Kind:   kind,
		Store:  store,
		Broker: broker,
		Flow:   flow,
	}
}

// respondStoreError maps storage failures onto the error envelope. Backend
// errors are reported with a sanitized message; internal detail stays in
// the logs.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error:   utilities.KindNotFound,
			Message: "Record not found",
		})
	case errors.Is(err, storage.ErrInvalidID):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:   utilities.KindValidationError,
			Message: "Invalid record id format",
		})
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error:   utilities.KindStorageError,
			Message: "Storage backend request failed",
		})
	}
}
