package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/docsmile-suite/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/docsmile-suite/internal/http/middleware"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	DataMode           string
	RequestObserver    httpmiddleware.RequestObserver
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
	Sessions           httpmiddleware.SessionResolver

	Auth         *handlers.AuthHandler
	Patients     *handlers.PatientsHandler
	Appointments *handlers.AppointmentsHandler
	Services     *handlers.ServicesHandler
	Applied      *handlers.AppliedHandler
	Payments     *handlers.PaymentsHandler
	Profile      *handlers.ProfileHandler
	Audit        *handlers.AuditHandler
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
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.RequestObserver))

	r.Get("/health", healthCheck(cfg.DataMode))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}

		// Public: sign-in, password recovery and lookups
		api.Get("/taxonomies", handlers.Taxonomies)
		if cfg.Auth != nil {
			api.Post("/auth/login", cfg.Auth.Login)
			api.Post("/auth/forgot-password/verify", cfg.Auth.ForgotVerify)
			api.Post("/auth/forgot-password/answer", cfg.Auth.VerifyAnswer)
			api.Post("/auth/forgot-password/reset", cfg.Auth.ResetPassword)
		}

		if cfg.Sessions == nil {
			return
		}
		api.Group(func(p chi.Router) {
			p.Use(httpmiddleware.SessionAuth(cfg.Sessions, cfg.Logger))

			if cfg.Auth != nil {
				p.Post("/auth/logout", cfg.Auth.Logout)
				p.Get("/auth/me", cfg.Auth.Me)
				p.Put("/auth/change-password", cfg.Auth.ChangePassword)
				p.Get("/session/preferences", cfg.Auth.GetPreferences)
				p.Put("/session/preferences", cfg.Auth.UpdatePreferences)
			}
			if cfg.Patients != nil {
				p.Mount("/patients", cfg.Patients.Routes())
			}
			if cfg.Appointments != nil {
				p.Mount("/appointments", cfg.Appointments.Routes())
			}
			if cfg.Services != nil {
				p.Mount("/services", cfg.Services.Routes())
			}
			if cfg.Applied != nil {
				p.Mount("/applied-services", cfg.Applied.Routes())
			}
			if cfg.Payments != nil {
				p.Mount("/payments", cfg.Payments.Routes())
			}
			if cfg.Profile != nil {
				p.Mount("/profile", cfg.Profile.Routes())
			}
			if cfg.Audit != nil {
				p.Mount("/audit", cfg.Audit.Routes())
			}
		})
	})

	return r
}

func healthCheck(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "mode": mode})
	}
}
