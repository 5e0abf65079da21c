package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

// QRHandler renders a PNG QR code pointing players at the game.
type QRHandler struct {
	publicURL string
	logger    *slog.Logger
}

// NewQRHandler encodes publicURL when set; otherwise the URL is derived from
// the request host.
func NewQRHandler(publicURL string, logger *slog.Logger) *QRHandler {
	return &QRHandler{publicURL: strings.TrimSuffix(publicURL, "/"), logger: logger}
}

func (h *QRHandler) ServeQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	url := h.joinURL(r)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr generation failed", "url", url, "error", err)
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}

func (h *QRHandler) joinURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}
