package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
	"github.com/julienschmidt/httprouter"
)

// Handler serves the REST API over the game service.
type Handler struct {
	service *app.GameService
	logger  *slog.Logger
}

func NewHandler(service *app.GameService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type joinRequest struct {
	PlayerName string `json:"playerName"`
}

type answerRequest struct {
	PlayerName string `json:"playerName"`
	Answer     *bool  `json:"answer"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// Register mounts every route under prefix (e.g. "/api").
func (h *Handler) Register(router *httprouter.Router, prefix string) {
	router.POST(prefix+"/join", h.join)
	router.GET(prefix+"/status", h.status)
	router.GET(prefix+"/questions", h.questions)
	router.POST(prefix+"/answer", h.answer)
	router.POST(prefix+"/next-question", h.nextQuestion)
	router.GET(prefix+"/leaderboard", h.leaderboard)
	router.GET(prefix+"/leaderboard/global", h.globalLeaderboard)
	router.GET(prefix+"/player/:name/history", h.playerHistory)
	router.POST(prefix+"/reset", h.reset)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.service.Join(r.Context(), req.PlayerName)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("player joined", "player", req.PlayerName, "players", res.PlayerCount)
	writeJSON(w, h.logger, http.StatusOK, res)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, h.logger, http.StatusOK, h.service.Status(r.Context()))
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, h.logger, http.StatusOK, h.service.Questions(r.Context()))
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.PlayerName == "" {
		writeError(w, r, h.logger, domain.ErrMissingPlayerName)
		return
	}
	if req.Answer == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: missing answer", domain.ErrValidation))
		return
	}
	res, err := h.service.SubmitAnswer(r.Context(), req.PlayerName, *req.Answer)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, err := h.service.NextQuestion(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, h.logger, http.StatusOK, h.service.Leaderboard(r.Context()))
}

func (h *Handler) globalLeaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, err := h.service.GlobalLeaderboard(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, entries)
}

func (h *Handler) playerHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.PlayerHistory(r.Context(), ps.ByName("name"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Reset(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("game reset", "session", h.service.Status(r.Context()).SessionID)
	writeJSON(w, h.logger, http.StatusOK, successResponse{Success: true})
}
