// Package httpapi exposes the device WebSocket endpoint plus health and
// debug surfaces over one HTTP server.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/wristchess/internal/bridge"
	"github.com/mcdev12/wristchess/internal/models"
)

// StateSource serves the current session state for the debug endpoint.
// *store.Store satisfies it.
type StateSource interface {
	GetState() *models.SessionState
}

// Config holds server addressing.
type Config struct {
	Port string
}

// NewServer wires the routes and wraps them with CORS and h2c.
func NewServer(cfg Config, wsBridge *bridge.WSBridge, st StateSource) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	mux.HandleFunc("/bridge/ws", wsBridge.HandleDevice)
	setupHealthCheck(mux, wsBridge)
	setupDebugState(mux, st)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func setupHealthCheck(mux *http.ServeMux, wsBridge *bridge.WSBridge) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","device_connected":%t}`, wsBridge.Connected())
	})
}

func setupDebugState(mux *http.ServeMux, st StateSource) {
	mux.HandleFunc("/debug/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st.GetState()); err != nil {
			log.Error().Err(err).Msg("failed to encode debug state")
		}
	})
}
