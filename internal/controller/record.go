package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/middleware"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/storage"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/utilities"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/validation"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/workflow"
)

// createResponse echoes the assigned identity plus the CV upload capability.
type createResponse struct {
	ID                   string `json:"id"`
	CreatedAt            string `json:"created_at"`
	Status               string `json:"status"`
	CVUploadURL          string `json:"cv_upload_url,omitempty"`
	CVUploadURLExpiresIn int    `json:"cv_upload_url_expires_in,omitempty"`
}

// recordResponse is a full record plus a short-lived download capability
// when the CV binary is already in the bucket.
type recordResponse struct {
	model.Record
	CVDownloadURL          string `json:"cv_download_url,omitempty"`
	CVDownloadURLExpiresIn int    `json:"cv_download_url_expires_in,omitempty"`
}

// Create handles record creation from an untrusted payload.
// @Summary Create a record
// @Description Open endpoint guarded by the submission quota. Returns the new id and a presigned CV upload URL.
// @Tags Record
// @Accept json
// @Produce json
// @Param record body validation.Draft true "Record draft"
// @Success 201 {object} createResponse "Record created"
// @Failure 400 {object} utilities.ValidationResponse "Payload failed validation"
// @Failure 429 {object} utilities.ErrorResponse "Submission quota exceeded"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications [post]
func (rc *RecordController) Create(c *gin.Context) {
	var draft validation.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:   utilities.KindValidationError,
			Message: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	draft, fieldErrs := validation.ValidateDraft(draft)
	if fieldErrs != nil {
		c.JSON(http.StatusBadRequest, utilities.NewValidationResponse(fieldErrs))
		return
	}

	contact, job := draft.ToRecordFields()
	rec, err := rc.Store.Create(c.Request.Context(), rc.Kind, contact, job)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	resp := createResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Status:    string(rec.Status),
	}

	uploadURL, err := rc.Broker.IssueCVUpload(rec.ID)
	if err != nil {
		// The record exists; a fresh URL can be requested later.
		log.Printf("failed to issue upload url for %s: %v", rec.ID, err)
	} else {
		resp.CVUploadURL = uploadURL
		resp.CVUploadURLExpiresIn = rc.Broker.TTLSeconds()
	}

	c.JSON(http.StatusCreated, resp)
}

// List handles prefix-scoped listing with optional filters.
// @Summary List records
// @Tags Record
// @Produce json
// @Param status query string false "Filter by lifecycle status"
// @Param limit query int false "Maximum results (default 100, cap 1000)"
// @Success 200 {object} map[string]interface{} "Record summaries, newest first"
// @Failure 400 {object} utilities.ErrorResponse "Bad filter"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications [get]
func (rc *RecordController) List(c *gin.Context) {
	filter := storage.ListFilter{}

	if status := c.Query("status"); status != "" {
		if !model.Status(status).Valid() {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: fmt.Sprintf("Unknown status filter: %s", status),
			})
			return
		}
		filter.Status = model.Status(status)
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: fmt.Sprintf("Invalid limit: %s", limitStr),
			})
			return
		}
		filter.Limit = limit
	}

	summaries, err := rc.Store.List(c.Request.Context(), rc.Kind, filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		rc.Kind.Namespace(): summaries,
		"count":             len(summaries),
		"filters": gin.H{
			"status": filter.Status,
			"limit":  filter.Limit,
		},
	})
}

// Get handles single-record reads. Anonymous callers receive the record
// without notes and history; privileged callers see everything. When the
// CV binary exists a download URL is attached; a reserved key without an
// uploaded object is simply omitted, never an error.
// @Summary Fetch one record
// @Tags Record
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} recordResponse "Record"
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 404 {object} utilities.ErrorResponse "Unknown id"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id} [get]
func (rc *RecordController) Get(c *gin.Context) {
	rec, err := rc.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	resp := recordResponse{Record: *rec}
	if !middleware.IsAdmin(c) {
		resp.Record = rec.Redact()
	}

	if rec.CVKey != "" {
		exists, err := rc.Store.Objects.Exists(c.Request.Context(), rec.CVKey)
		if err != nil {
			log.Printf("failed to stat cv object for %s: %v", rec.ID, err)
		} else if exists {
			url, err := rc.Broker.IssueDownload(rec.CVKey)
			if err != nil {
				log.Printf("failed to issue download url for %s: %v", rec.ID, err)
			} else {
				resp.CVDownloadURL = url
				resp.CVDownloadURLExpiresIn = rc.Broker.TTLSeconds()
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Update handles whitelisted patches. Unknown or immutable fields in the
// body are rejected, not ignored.
// @Summary Patch a record
// @Tags Record
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Record id"
// @Param patch body storage.Patch true "Whitelisted fields"
// @Success 200 {object} utilities.MessageResponse "Record updated"
// @Failure 400 {object} utilities.ErrorResponse "Immutable field in patch"
// @Failure 404 {object} utilities.ErrorResponse "Unknown id"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id} [put]
func (rc *RecordController) Update(c *gin.Context) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	var patch storage.Patch
	if err := decoder.Decode(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:   utilities.KindValidationError,
			Message: fmt.Sprintf("Invalid patch body: %s", err.Error()),
		})
		return
	}

	rec, err := rc.Store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         rec.ID,
		"updated":    true,
		"updated_at": rec.UpdatedAt,
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateStatus handles lifecycle transitions with an optional note.
// @Summary Transition record status
// @Tags Record
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Record id"
// @Param transition body statusRequest true "Target status and optional note"
// @Success 200 {object} utilities.MessageResponse "Status updated"
// @Failure 400 {object} utilities.ErrorResponse "Unknown status or forbidden transition"
// @Failure 404 {object} utilities.ErrorResponse "Unknown id"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id}/status [put]
func (rc *RecordController) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:   utilities.KindValidationError,
			Message: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	rec, err := rc.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if err := rc.Flow.Transition(rec, model.Status(req.Status), req.Note); err != nil {
		var unknown workflow.ErrUnknownStatus
		var backward workflow.ErrBackwardTransition
		if errors.As(err, &unknown) || errors.As(err, &backward) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error:   utilities.KindValidationError,
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error:   utilities.KindInternalError,
			Message: "Failed to apply status transition",
		})
		return
	}

	if err := rc.Store.Save(c.Request.Context(), rec); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         rec.ID,
		"status":     rec.Status,
		"updated_at": rec.UpdatedAt,
	})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// UpdateNotes overwrites the record's notes verbatim. No history entry is
// written; that is reserved for status changes.
// @Summary Overwrite record notes
// @Tags Record
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Record id"
// @Param notes body notesRequest true "Replacement notes"
// @Success 200 {object} utilities.MessageResponse "Notes updated"
// @Failure 404 {object} utilities.ErrorResponse "Unknown id"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id}/notes [put]
func (rc *RecordController) UpdateNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:   utilities.KindValidationError,
			Message: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	rec, err := rc.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	rc.Flow.SetNotes(rec, req.Notes)

	if err := rc.Store.Save(c.Request.Context(), rec); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         rec.ID,
		"updated":    true,
		"updated_at": rec.UpdatedAt,
	})
}

// Delete removes the record and every attachment under its prefix.
// @Summary Delete a record and its attachments
// @Tags Record
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Record id"
// @Success 200 {object} utilities.MessageResponse "Record deleted"
// @Failure 404 {object} utilities.ErrorResponse "Unknown id"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id} [delete]
func (rc *RecordController) Delete(c *gin.Context) {
	id := c.Param("id")
	deleted, err := rc.Store.Delete(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            id,
		"deleted":       true,
		"files_deleted": deleted,
	})
}

// ReissueUploadURL mints a fresh CV upload URL for an existing record,
// for when the original one expired before the upload happened.
// @Summary Reissue a CV upload URL
// @Tags Record
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} map[string]interface{} "Fresh upload URL"
// @Failure 404 {object} utilities.ErrorResponse "Unknown id"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id}/cv-upload-url [post]
func (rc *RecordController) ReissueUploadURL(c *gin.Context) {
	id := c.Param("id")

	// The record must exist before a capability for its prefix is handed out.
	if _, err := rc.Store.Get(c.Request.Context(), id); err != nil {
		respondStoreError(c, err)
		return
	}

	url, err := rc.Broker.IssueCVUpload(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error:   utilities.KindStorageError,
			Message: "Failed to issue upload URL",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                       id,
		"cv_upload_url":            url,
		"cv_upload_url_expires_in": rc.Broker.TTLSeconds(),
		"content_type":             storage.CVContentType,
		"max_size_bytes":           storage.MaxCVBytes,
	})
}
