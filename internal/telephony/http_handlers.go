package telephony

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-gateway/internal/session"
	"crm-gateway/internal/status"
	"crm-gateway/pkg/logger"
)

// WebhookHandlers converts provider webhooks to internal types, delegates to
// the builder/reconciler, and writes markup or status codes back.
//
// Error policy (every handler):
// - client-caused problems -> 400, no side effect
// - vendor failure on a markup endpoint -> 500 with Fallback markup, never
//   a raw error (the "user" on a voice path is a live caller)
// - store failure -> 500; provider retries are safe because the reconciler
//   is idempotent
// No fault may escape to a bodyless 500.

type WebhookHandlers struct {
	Initiator  CallInitiator
	Reconciler *status.Service

	// CallerID optionally overrides the presented caller ID on forwards.
	CallerID string

	// BridgeBaseURL is the media-streaming service base URL.
	BridgeBaseURL string

	// OpeningScript identifies the script the bridge target should run for
	// intake calls.
	OpeningScript string
}

// HandleVoiceForward forwards an inbound call to the number in the `to`
// query parameter. Registered for both POST and GET; the provider probes
// with either verb.
func (h WebhookHandlers) HandleVoiceForward(c *gin.Context) {
	log := logger.FromGin(c)

	to := strings.TrimSpace(c.Query("to"))
	if to == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to is required"})
		return
	}

	if h.Initiator == nil {
		log.Error("call initiator not configured")
		h.writeFallback(c, http.StatusInternalServerError)
		return
	}

	res, err := h.Initiator.CreateCall(c.Request.Context(), CreateCallRequest{
		To:   to,
		From: h.CallerID,
	})
	if err != nil {
		if errors.Is(err, ErrMissingParameter) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to is required"})
			return
		}
		log.Error("vendor call submission failed", "to", to, "err", err)
		h.writeFallback(c, http.StatusInternalServerError)
		return
	}

	markup, err := RenderVoiceForward(to, h.CallerID)
	if err != nil {
		// Only reachable with an empty destination, which was checked above.
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to is required"})
		return
	}

	log.Info("call forwarded", "to", to, "vendor_sid", res.SID)
	c.Header("Content-Type", ContentTypeXML)
	c.String(http.StatusOK, markup)
}

// HandleVoiceIntake bridges an inbound call to the media-streaming target,
// embedding the session metadata token in the stream URL.
func (h WebhookHandlers) HandleVoiceIntake(c *gin.Context) {
	log := logger.FromGin(c)

	token, err := session.Encode(session.Metadata{
		OpeningScript: h.OpeningScript,
		Stage:         "opening",
	})
	if err != nil {
		log.Error("session encoding failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session encoding failed"})
		return
	}

	markup, err := RenderStreamBridge(h.BridgeBaseURL, token)
	if err != nil {
		log.Error("bridge markup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "bridge target misconfigured"})
		return
	}

	c.Header("Content-Type", ContentTypeXML)
	c.String(http.StatusOK, markup)
}

// HandleSmsInbound acknowledges an inbound SMS with the fixed reply.
// Intentionally lenient: a malformed body is logged and still acknowledged,
// unlike the stricter voice path.
func (h WebhookHandlers) HandleSmsInbound(c *gin.Context) {
	log := logger.FromGin(c)

	ev, err := ParseInboundEvent(c.Request)
	switch {
	case err != nil:
		log.Warn("sms webhook parse failed", "err", err)
	case ev.Kind != EventSmsInbound:
		log.Warn("sms webhook carried unexpected event", "kind", string(ev.Kind))
	default:
		log.Info("sms received", "from", ev.From, "to", ev.To, "chars", len(ev.Body))
	}

	c.Header("Content-Type", ContentTypeXML)
	c.String(http.StatusOK, RenderSmsAck())
}

// HandleStatusCallback reconciles a delivery-status callback against the
// persisted message record. 204 acknowledges without giving the provider
// response content to parse.
func (h WebhookHandlers) HandleStatusCallback(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Reconciler == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reconciler not configured"})
		return
	}

	ev, err := ParseInboundEvent(c.Request)
	if err != nil {
		log.Warn("status webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if ev.Kind != EventStatusCallback {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "not a status callback"})
		return
	}

	ctx := logger.With(c.Request.Context(), log)
	res, err := h.Reconciler.Apply(ctx, status.Callback{
		SID:        ev.SID,
		Status:     status.Status(ev.Status),
		From:       ev.From,
		To:         ev.To,
		ErrorCode:  ev.ErrorCode,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		if errors.Is(err, status.ErrMalformedCallback) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		log.Error("status reconcile failed", "sid", ev.SID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	if res.Applied {
		log.Info("status applied", "sid", ev.SID, "from_status", string(res.Previous), "to_status", string(res.Current))
	}
	c.Status(http.StatusNoContent)
}

// HandleFallback returns the fixed apology-and-hangup markup. It takes no
// input and must never fail; the provider calls it when a primary webhook
// already has.
func (h WebhookHandlers) HandleFallback(c *gin.Context) {
	h.writeFallback(c, http.StatusOK)
}

func (h WebhookHandlers) writeFallback(c *gin.Context, code int) {
	c.Header("Content-Type", ContentTypeXML)
	c.String(code, RenderFallback())
}
