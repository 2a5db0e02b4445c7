// Package handler translates HTTP requests into boundary service calls.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/waveradio/internal/boundary/service"
)

// SubmissionHandlers serves track submission and listing.
type SubmissionHandlers struct {
	svc *service.SubmissionService
}

// NewSubmissionHandlers builds a SubmissionHandlers.
func NewSubmissionHandlers(svc *service.SubmissionService) *SubmissionHandlers {
	return &SubmissionHandlers{svc: svc}
}

// Upload handles POST /submissions/upload (multipart form: file, submitter,
// title, artist, comment).
func (h *SubmissionHandlers) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "missing file"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "could not read file"})
		return
	}
	defer f.Close()

	track, err := h.svc.SubmitUpload(c.Request.Context(),
		c.PostForm("submitter"), c.PostForm("title"), c.PostForm("artist"), c.PostForm("comment"),
		fileHeader.Filename, fileHeader.Size, f,
	)
	if err != nil {
		writeSubmissionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "track": track})
}

// SubmitURL handles POST /submissions/url (JSON: submitter, url, title,
// artist, comment).
func (h *SubmissionHandlers) SubmitURL(c *gin.Context) {
	var body struct {
		Submitter string `json:"submitter"`
		URL       string `json:"url"`
		Title     string `json:"title"`
		Artist    string `json:"artist"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	track, err := h.svc.SubmitYouTube(c.Request.Context(), body.Submitter, body.URL, body.Title, body.Artist, body.Comment)
	if err != nil {
		writeSubmissionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "track": track})
}

// GetTrack handles GET /tracks/:id
func (h *SubmissionHandlers) GetTrack(c *gin.Context) {
	track, err := h.svc.GetTrack(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "track not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "track": track})
}

// ListTracks handles GET /tracks
func (h *SubmissionHandlers) ListTracks(c *gin.Context) {
	tracks, err := h.svc.ListTracks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tracks": tracks})
}

func writeSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOverPendingCap),
		errors.Is(err, service.ErrBadFileType),
		errors.Is(err, service.ErrTooLarge),
		errors.Is(err, service.ErrDuplicateSource),
		errors.Is(err, service.ErrBadSourceURL):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal error"})
	}
}
