package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pokedoro/internal/handlers"
	"pokedoro/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.Instrument)
	r.Use(middlewares.Cors(s.cfg.AllowedOrigins))

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.IndexHandler).Methods("GET")
	r.HandleFunc("/health", ch.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.registerLoginRoutes(r)
	s.registerUserRoutes(r)

	return r
}

func (s *Server) registerLoginRoutes(r *mux.Router) {
	lh := handlers.NewLoginHandler(s.loginService, s.sessionStore, s.storageFor)

	r.HandleFunc("/login", lh.ShowLogin).Methods("GET")
	r.Handle("/login", s.rateLimiter.Limit(http.HandlerFunc(lh.SubmitLogin))).Methods("POST")
	r.Handle("/api/login", s.rateLimiter.Limit(http.HandlerFunc(lh.APILogin))).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/login/validate", lh.ValidateFields).Methods("POST", "OPTIONS")
}

func (s *Server) registerUserRoutes(r *mux.Router) {
	uh := handlers.NewUserHandler(s.sessionStore)
	requireToken := middlewares.RequireToken(s.storageFor, "/login")

	r.Handle(s.cfg.PostLoginRoute, requireToken(http.HandlerFunc(uh.Home))).Methods("GET")
}
