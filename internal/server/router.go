package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/greenprompt/backend/internal/auth"
	"github.com/ayush/greenprompt/backend/internal/httpx"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/middleware"
	"github.com/ayush/greenprompt/backend/internal/optimize"
	"github.com/ayush/greenprompt/backend/internal/stats"
)

// RouterDeps are the collaborators the HTTP routes need.
type RouterDeps struct {
	Logger     logging.Logger
	CORSOrigin string
	Tokens     middleware.TokenVerifier
	Users      middleware.UserLookup
	Auth       *auth.Handler
	Optimize   *optimize.Handler
	Stats      *stats.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Identify(d.Tokens, d.Users, d.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteJSON(w, http.StatusOK, httpx.OK{OK: true})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", d.Auth.Signup)
			r.Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/me", d.Auth.Me)
		})

		r.Post("/optimize", d.Optimize.Optimize)
		r.Post("/optimize/suggest", d.Optimize.Suggest)
		r.Get("/stats", d.Stats.Get)
	})

	return r
}
