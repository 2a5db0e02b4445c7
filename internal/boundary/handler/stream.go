package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/waveradio/internal/boundary/service"
)

// StreamHandlers serves the streaming engine's narrow contract:
// next-track and track-started.
type StreamHandlers struct {
	svc *service.StreamingService
}

// NewStreamHandlers builds a StreamHandlers.
func NewStreamHandlers(svc *service.StreamingService) *StreamHandlers {
	return &StreamHandlers{svc: svc}
}

// NextTrack handles GET /next-track. Always 200; an empty body is the
// failure signal.
func (h *StreamHandlers) NextTrack(c *gin.Context) {
	body, err := h.svc.NextTrack(c.Request.Context())
	if err != nil {
		c.String(http.StatusOK, "")
		return
	}
	c.String(http.StatusOK, "%s", body)
}

// TrackStarted handles POST /track-started/:id. Never errors to the
// caller.
func (h *StreamHandlers) TrackStarted(c *gin.Context) {
	h.svc.TrackStarted(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
