package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/waveradio/internal/auth"
	"github.com/arung-agamani/waveradio/internal/boundary/service"
)

// AdminHandlers serves the authenticated admin surface.
type AdminHandlers struct {
	auth *auth.Auth
	svc  *service.AdminService
}

// NewAdminHandlers builds an AdminHandlers.
func NewAdminHandlers(a *auth.Auth, svc *service.AdminService) *AdminHandlers {
	return &AdminHandlers{auth: a, svc: svc}
}

// Login handles POST /admin/login.
func (h *AdminHandlers) Login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	token, err := h.auth.Authenticate(body.Username, body.Password, c.Request.RemoteAddr)
	if err != nil {
		if errors.Is(err, auth.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"status": "error", "error": err.Error()})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "token": token})
}

// GetConfig handles GET /admin/config/:key.
func (h *AdminHandlers) GetConfig(c *gin.Context) {
	value, ok, err := h.svc.GetConfig(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "config key not set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "key": c.Param("key"), "value": value})
}

// SetConfig handles PUT /admin/config/:key.
func (h *AdminHandlers) SetConfig(c *gin.Context) {
	var body struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if err := h.svc.SetConfig(c.Request.Context(), c.Param("key"), body.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteTrack handles DELETE /admin/tracks/:id.
func (h *AdminHandlers) DeleteTrack(c *gin.Context) {
	if err := h.svc.DeleteTrack(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "track not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UpdateComment handles PATCH /admin/tracks/:id.
func (h *AdminHandlers) UpdateComment(c *gin.Context) {
	var body struct {
		Comment *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if err := h.svc.UpdateComment(c.Request.Context(), c.Param("id"), body.Comment); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "track not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Skip handles POST /admin/skip.
func (h *AdminHandlers) Skip(c *gin.Context) {
	if err := h.svc.Skip(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "error": "could not signal streaming engine"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
