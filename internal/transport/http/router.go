package http

import (
	"log/slog"
	"net/http"
	"strings"

	"trivia-room-service/internal/app"
	"github.com/julienschmidt/httprouter"
)

// RouterConfig controls where routes are mounted.
type RouterConfig struct {
	// Prefix is prepended to every API route, e.g. "/api".
	Prefix    string
	PublicURL string
}

// NewRouter wires the REST API, the websocket stream, the QR code and the
// health check into one handler.
func NewRouter(service *app.GameService, cfg RouterConfig, logger *slog.Logger) http.Handler {
	prefix := strings.TrimSuffix(cfg.Prefix, "/")

	router := httprouter.New()
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		logger.Error("panic serving request", "method", r.Method, "path", r.URL.Path, "panic", v)
		writeJSON(w, logger, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusNotFound, errorBody{Error: "route not found"})
	})

	NewHandler(service, logger).Register(router, prefix)
	router.GET(prefix+"/ws", NewWSHandler(service, logger).ServeWS)
	router.GET(prefix+"/qr", NewQRHandler(cfg.PublicURL, logger).ServeQR)
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Write([]byte("ok"))
	})

	return WithLogging(logger, router)
}
