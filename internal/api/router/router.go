package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/sartoria-ai/chat-platform/internal/http/middleware"
	"github.com/sartoria-ai/chat-platform/internal/webchat"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Webchat            *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec per IP for the HTTP fallback endpoints. Zero disables
	// rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.Webchat))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Webchat != nil {
		r.Route("/webchat", func(wc chi.Router) {
			// The websocket upgrade stays outside the rate limiter;
			// one long-lived connection is the cheap path.
			wc.Get("/ws", cfg.Webchat.HandleWebSocket)

			wc.Group(func(limited chi.Router) {
				if cfg.RateLimitPerSecond > 0 {
					burst := cfg.RateLimitBurst
					if burst <= 0 {
						burst = 10
					}
					limited.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, burst))
				}
				limited.Post("/message", cfg.Webchat.HandleMessage)
				limited.Get("/history", cfg.Webchat.HandleHistory)
				limited.Get("/status", cfg.Webchat.HandleStatus)
				limited.Delete("/session", cfg.Webchat.HandleEndSession)
			})
		})
	}

	return r
}

// healthHandler reports service liveness plus realtime layer stats.
func healthHandler(wc *webchat.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": "chat-platform",
		}
		if wc != nil {
			health["active_connections"] = wc.ActiveSessions()
			health["handoff_queue_size"] = wc.Handoffs().QueueSize()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health)
	}
}
