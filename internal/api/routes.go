package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Zerr0-C00L/EventCast/internal/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) http.Handler {
	r := mux.NewRouter()

	// Public playlist output
	r.HandleFunc("/playlist.m3u8", handler.GetPlaylist).Methods("GET")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")

	// Admin
	admin := api.PathPrefix("").Subrouter()
	admin.Use(auth.RequireAuth)
	admin.HandleFunc("/refresh", handler.TriggerRefresh).Methods("POST")

	r.Use(loggingMiddleware)

	return r
}

// loggingMiddleware logs each request with its duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
