// Package httpapi serves the service endpoints and the WhatsApp webhook.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"salvo-backend/internal/api/respond"
	"salvo-backend/internal/bloom"
	"salvo-backend/internal/catalog"
	"salvo-backend/internal/model"
	"salvo-backend/internal/processing"
	"salvo-backend/internal/whatsapp"
)

// Status is what /api/status reports about the running instance.
type Status struct {
	Service            string `json:"service"`
	Version            string `json:"version"`
	Environment        string `json:"environment"`
	CatalogDriver      string `json:"catalog_driver"`
	KafkaEnabled       bool   `json:"kafka_enabled"`
	WhatsAppConfigured bool   `json:"whatsapp_configured"`
}

// Webhook holds the collaborators of the WhatsApp endpoints.
type Webhook struct {
	VerifyToken string
	Dedupe      bloom.Seen
	Handler     processing.Handler
	Workers     int
	// Timeout bounds the processing of one delivery. Zero means 30s.
	Timeout time.Duration
}

const defaultWebhookTimeout = 30 * time.Second

// Server wires the routes of this package.
type Server struct {
	status  Status
	source  catalog.Source
	webhook Webhook
	log     zerolog.Logger
	started time.Time
}

// NewServer creates a Server. source backs the catalog size in /api/status.
func NewServer(status Status, source catalog.Source, webhook Webhook, log zerolog.Logger) *Server {
	if webhook.Dedupe == nil {
		webhook.Dedupe = bloom.NewMemory(time.Hour)
	}
	if webhook.Timeout <= 0 {
		webhook.Timeout = defaultWebhookTimeout
	}
	return &Server{status: status, source: source, webhook: webhook, log: log, started: time.Now()}
}

// RegisterRoutes wires health, status and webhook routes.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.statusHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/whatsapp/webhook", s.verifyHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/whatsapp/webhook", s.webhookHandler).Methods(http.MethodPost)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{
		"status":        "ok",
		"info":          s.status,
		"uptime_sec":    int64(time.Since(s.started).Seconds()),
		"catalog_ready": true,
	}
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("status: catalog unavailable")
		body["status"] = "degraded"
		body["catalog_ready"] = false
	} else {
		body["catalog_records"] = snap.Len()
	}
	respond.WriteJSON(w, http.StatusOK, body)
}

// verifyHandler answers the platform's subscription handshake by echoing
// hub.challenge when hub.verify_token matches.
func (s *Server) verifyHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != s.webhook.VerifyToken || s.webhook.VerifyToken == "" {
		s.log.Warn().Str("mode", q.Get("hub.mode")).Msg("webhook verification rejected")
		respond.WriteError(w, http.StatusForbidden, "invalid verify token")
		return
	}
	s.log.Info().Msg("webhook verified")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

// WebhookResult is the body returned for a delivery.
type WebhookResult struct {
	Status     string `json:"status"`
	Received   int    `json:"received"`
	Duplicates int    `json:"duplicates"`
	Failed     int64  `json:"failed"`
}

// webhookHandler processes a delivery inline. Ids are marked seen before
// handling, so once decoded a delivery is always answered 200 and handled
// to completion even if the caller hangs up; a redelivery would be dropped.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.webhook.Timeout)
	defer cancel()

	all := payload.Messages()
	fresh := make([]model.InboundMessage, 0, len(all))
	for _, m := range all {
		if s.webhook.Dedupe.Seen(ctx, m.ID) {
			s.log.Info().Str("message_id", m.ID).Msg("duplicate delivery skipped")
			continue
		}
		fresh = append(fresh, m)
	}

	result := WebhookResult{Status: "success", Received: len(all), Duplicates: len(all) - len(fresh)}
	if len(fresh) > 0 && s.webhook.Handler != nil {
		stats, err := processing.ProcessMessages(ctx, s.webhook.Handler, fresh, s.webhook.Workers, s.log)
		if err != nil {
			s.log.Error().Err(err).Int("messages", len(fresh)).Msg("webhook processing timed out")
			result.Status = "partial"
		} else {
			result.Failed = stats.Failed
		}
	}
	respond.WriteJSON(w, http.StatusOK, result)
}
