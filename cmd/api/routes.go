package main

import (
	"database/sql"
	"net/http"
	"time"

	"crm-gateway/internal/config"
	"crm-gateway/internal/httpapi"
	"crm-gateway/internal/telephony"
	"crm-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, webhooks telephony.WebhookHandlers, api httpapi.Handlers, db *sql.DB) {
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public). Signature validation authenticates the
	// provider; it is a pass-through when no auth token is configured
	// (local/dev — production config requires one).
	wh := r.Group("/webhooks")
	wh.Use(telephony.RequireValidSignature(cfg.Twilio.AuthToken, cfg.Gateway.PublicBaseURL))
	{
		// Voice endpoints answer GET as well; the provider probes with either verb.
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			wh.Handle(method, "/voice/forward", webhooks.HandleVoiceForward)
			wh.Handle(method, "/voice/intake", webhooks.HandleVoiceIntake)
			wh.Handle(method, "/voice/fallback", webhooks.HandleFallback)
		}

		wh.POST("/sms", webhooks.HandleSmsInbound)
		wh.POST("/sms/status", webhooks.HandleStatusCallback)
	}

	// Flow registry, consumed by upstream routing decisions.
	v1 := r.Group("/v1")
	{
		v1.GET("/flows", api.ListFlows)
	}
}
