package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the chi router with all routes configured.
func NewRouter(h *Handler, adminAPIKey string, corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.GetState)

		r.Get("/providers", h.ListProviders)
		r.Get("/accounts", h.ListAccounts)
		r.Post("/accounts", h.LinkAccount)
		r.Get("/accounts/{id}", h.GetAccount)

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/connect", h.ConnectWallet)
			r.Post("/disconnect", h.DisconnectWallet)
			r.Post("/deposit", h.DepositXRP)
		})

		r.Post("/escrow", h.CreateEscrow)
		r.Post("/escrow/release", h.ReleaseEscrow)

		r.Post("/challenges/{id}/complete", h.CompleteChallenge)

		r.Route("/carousel", func(r chi.Router) {
			r.Post("/scroll", h.Scroll)
			r.Post("/goto", h.GoTo)
			r.Post("/touch", h.Touch)
			r.Post("/next", h.Next)
			r.Post("/prev", h.Prev)
		})

		r.Put("/savings/rate", h.SetSavingsRate)
		r.Get("/notifications", h.DrainNotifications)

		r.Get("/journal", h.ListJournal)
		r.Get("/journal/latest", h.GetLatestJournal)

		exportHandler := http.HandlerFunc(h.Export)
		if adminAPIKey != "" {
			r.Method(http.MethodPost, "/export", requireAuth(adminAPIKey, exportHandler))
		} else {
			r.Method(http.MethodPost, "/export", exportHandler)
		}
	})

	return r
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, h *Handler, adminAPIKey string, corsOrigins []string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(h, adminAPIKey, corsOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
