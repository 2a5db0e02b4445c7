// Package boundary is the HTTP boundary adapter: submission, the
// streaming engine's narrow next-track/track-started contract, and
// authenticated admin CRUD. It is an external collaborator around the
// Scheduler and Ingestion Worker core, not part of that core itself.
package boundary

import (
	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/waveradio/internal/auth"
	"github.com/arung-agamani/waveradio/internal/boundary/handler"
	"github.com/arung-agamani/waveradio/internal/boundary/service"
	"github.com/arung-agamani/waveradio/internal/engine"
	"github.com/arung-agamani/waveradio/internal/scheduler"
	"github.com/arung-agamani/waveradio/internal/store"

	"github.com/arung-agamani/waveradio/config"
)

// NewServer builds the gin engine wiring every boundary route.
func NewServer(cfg *config.Config, st *store.Store, sch *scheduler.Scheduler) *gin.Engine {
	a := auth.New(auth.Config{
		Username:  cfg.AdminUsername,
		Password:  cfg.AdminPassword,
		JWTSecret: cfg.JWTSecret,
	})
	eng := engine.New(cfg.StreamEngineControlAddr, cfg.StreamEngineTimeout)

	submissionSvc := service.NewSubmissionService(st, cfg)
	streamingSvc := service.NewStreamingService(st, sch)
	adminSvc := service.NewAdminService(st, eng)

	submissionH := handler.NewSubmissionHandlers(submissionSvc)
	streamH := handler.NewStreamHandlers(streamingSvc)
	adminH := handler.NewAdminHandlers(a, adminSvc)

	r := gin.New()
	r.Use(gin.Recovery(), securityHeaders())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	r.POST("/submissions/upload", submissionH.Upload)
	r.POST("/submissions/url", submissionH.SubmitURL)
	r.GET("/tracks", submissionH.ListTracks)
	r.GET("/tracks/:id", submissionH.GetTrack)

	r.GET("/next-track", streamH.NextTrack)
	r.POST("/track-started/:id", streamH.TrackStarted)

	r.POST("/admin/login", adminH.Login)

	admin := r.Group("/admin")
	admin.Use(authRequired(a))
	{
		admin.GET("/config/:key", adminH.GetConfig)
		admin.PUT("/config/:key", adminH.SetConfig)
		admin.DELETE("/tracks/:id", adminH.DeleteTrack)
		admin.PATCH("/tracks/:id", adminH.UpdateComment)
		admin.POST("/skip", adminH.Skip)
	}

	return r
}
