package transport

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/al-chris/1-2-3-game/internal/middleware"
	"github.com/al-chris/1-2-3-game/internal/transport/websocket"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger    *slog.Logger
	Hub       *websocket.Hub
	StaticDir string
}

// NewRouter creates the HTTP router: the websocket endpoint, a health check,
// and the static game client
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/ws", cfg.Hub.ServeWS)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
