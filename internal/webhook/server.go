package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chatwire/chatwire/internal/events"
	"github.com/chatwire/chatwire/internal/signature"
	"github.com/chatwire/chatwire/internal/twilio"
)

// Server represents the webhook HTTP server.
type Server struct {
	config    Config
	sender    ReplySender
	policy    AutoReplyPolicy // may be nil: verified messages are acknowledged only
	hub       *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new webhook server instance. policy may be nil.
func New(config Config, sender ReplySender, policy AutoReplyPolicy, hub *events.Hub, logger *slog.Logger) *Server {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.SignatureHeader == "" {
		config.SignatureHeader = DefaultSignatureHeader
	}
	if hub == nil {
		hub = events.NewHub(256)
	}

	return &Server{
		config:    config,
		sender:    sender,
		policy:    policy,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting",
		"listen", s.config.Listen,
		"path", s.config.Path,
		"events_enabled", s.config.APIKey != "",
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleInbound)
	r.Get("/healthz", s.handleHealthz)
	if s.config.APIKey != "" {
		r.Get("/events", s.requireAPIKey(s.handleEvents))
	}

	return r
}

// loggingMiddleware logs HTTP requests (excludes message bodies).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleInbound handles one provider callback: verify, dispatch,
// acknowledge. The reply send (if any) completes before the 200 is
// written; its failure never changes the acknowledgment.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	fields, err := parseFormFields(string(body))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	presented := r.Header.Get(s.config.SignatureHeader)
	if !signature.Verify(s.config.PublicURL, fields, presented, s.config.AuthToken) {
		// Security event: logged and published, but the response stays
		// generic. Terminal for this request; the policy never runs.
		s.logger.Warn("webhook signature verification failed",
			"path", r.URL.Path,
			"signature_present", presented != "",
			"request_id", middleware.GetReqID(ctx),
		)
		s.hub.Publish(events.TypeMessageRejected, events.Traffic{
			Reason: "signature verification failed",
		})
		s.respondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	msg := inboundFromFields(fields)
	s.logger.Info("verified inbound message",
		"from", msg.From,
		"message_sid", msg.MessageSID,
	)
	s.hub.Publish(events.TypeMessageReceived, events.Traffic{
		From:       msg.From,
		To:         msg.To,
		MessageSID: msg.MessageSID,
	})

	s.dispatchReply(ctx, msg)

	w.WriteHeader(http.StatusOK)
}

// dispatchReply runs the auto-reply policy and sends its answer. All
// failures end here: the webhook acknowledgment must not depend on the
// outbound leg.
func (s *Server) dispatchReply(ctx context.Context, msg InboundMessage) {
	if s.policy == nil {
		return
	}

	reply, ok := s.policy.Reply(msg.From, msg.Body)
	if !ok || reply == "" {
		return
	}

	to := twilio.StripChannelPrefix(msg.From)
	result, err := s.sender.SendText(ctx, to, reply)
	if err != nil {
		s.logger.Error("auto-reply send failed",
			"to", to,
			"in_reply_to", msg.MessageSID,
			"error", err,
		)
		s.hub.Publish(events.TypeReplyFailed, events.Traffic{
			To:         to,
			MessageSID: msg.MessageSID,
			Reason:     err.Error(),
		})
		return
	}

	s.logger.Info("auto-reply sent",
		"to", to,
		"message_sid", result.SID,
		"in_reply_to", msg.MessageSID,
	)
	s.hub.Publish(events.TypeReplySent, events.Traffic{
		To:         to,
		MessageSID: result.SID,
		Status:     result.Status,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

// parseFormFields decodes a form-encoded body into a flat field map.
// Repeated keys keep the first value, matching what the provider signs.
func parseFormFields(body string) (map[string]string, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return fields, nil
}

// inboundFromFields builds the message record. Required fields default
// to empty strings; missing optional metadata is not an error.
func inboundFromFields(fields map[string]string) InboundMessage {
	return InboundMessage{
		From:        fields["From"],
		To:          fields["To"],
		Body:        fields["Body"],
		MessageSID:  fields["MessageSid"],
		ProfileName: fields["ProfileName"],
		WaID:        fields["WaId"],
	}
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
