package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"edugames-service/internal/app"
	"edugames-service/internal/domain"
)

// APIHandler serves the REST surface: the game catalog, completion reports
// and reward point totals.
type APIHandler struct {
	service *app.GameService
}

func NewAPIHandler(service *app.GameService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts the REST routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/games", h.listGames)
	mux.HandleFunc("GET /api/games/{id}", h.getGame)
	mux.HandleFunc("POST /api/games/{id}/complete", h.completeGame)
	mux.HandleFunc("GET /api/users/{id}/points", h.totalPoints)
}

func (h *APIHandler) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ListGames(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, games)
}

func (h *APIHandler) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, game)
}

type completeRequest struct {
	UserID         string `json:"userId"`
	Score          int    `json:"score"`
	IdempotencyKey string `json:"idempotencyKey"`
}

func (h *APIHandler) completeGame(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.IdempotencyKey == "" {
		http.Error(w, "missing userId or idempotencyKey", http.StatusBadRequest)
		return
	}
	result, err := h.service.CompleteGame(r.Context(), r.PathValue("id"), req.UserID, req.Score, req.IdempotencyKey)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type pointsResponse struct {
	UserID      string `json:"userId"`
	TotalPoints int    `json:"totalPoints"`
}

func (h *APIHandler) totalPoints(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	total, err := h.service.TotalPoints(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pointsResponse{UserID: userID, TotalPoints: total})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound), errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidScore), errors.Is(err, domain.ErrNoContent),
		errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrUnknownGameType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
