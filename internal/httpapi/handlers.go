package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rascal55/MusicQuizApp/internal/game"
	"github.com/Rascal55/MusicQuizApp/internal/hub"
)

type createRequest struct {
	GameID       string        `json:"gameId"`
	GameSettings game.Settings `json:"gameSettings"`
	Rounds       []game.Round  `json:"rounds"`
}

type roundSummary struct {
	RoundNumber int    `json:"roundNumber"`
	RoundName   string `json:"roundName"`
}

type gameSummary struct {
	GameID      string      `json:"gameId"`
	Status      game.Status `json:"status"`
	PlayerCount int         `json:"playerCount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"message":   "Music Quiz Backend is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func CreateGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, game.Message(game.ErrMissingConfig))
			return
		}

		_, err := h.Create(req.GameID, req.GameSettings, req.Rounds)
		switch {
		case errors.Is(err, game.ErrMissingConfig), errors.Is(err, game.ErrBadJoinCode):
			writeError(w, http.StatusBadRequest, game.Message(err))
			return
		case errors.Is(err, game.ErrCodeTaken):
			writeError(w, http.StatusConflict, game.Message(err))
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Failed to create game")
			return
		}

		code := game.NormalizeCode(req.GameID)
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":  true,
			"gameId":   code,
			"joinCode": code,
			"status":   game.StatusLobby,
			"message":  "Game created successfully",
		})
	}
}

func GetGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm := h.Get(chi.URLParam(r, "gameID"))
		if rm == nil {
			writeError(w, http.StatusNotFound, game.Message(game.ErrNotFound))
			return
		}
		view, ok := rm.Status(r.Context())
		if !ok {
			writeError(w, http.StatusNotFound, game.Message(game.ErrNotFound))
			return
		}

		rounds := make([]roundSummary, len(view.Rounds))
		for i, rd := range view.Rounds {
			rounds[i] = roundSummary{RoundNumber: rd.RoundNumber, RoundName: rd.RoundName}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"gameId":      view.JoinCode,
			"status":      view.Status,
			"playerCount": view.PlayerCount,
			"maxPlayers":  view.MaxPlayers,
			"rounds":      rounds,
		})
	}
}

func ListGames(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games := []gameSummary{}
		for _, rm := range h.List() {
			view, ok := rm.Status(r.Context())
			if !ok {
				continue // closed between the snapshot and the query
			}
			games = append(games, gameSummary{
				GameID:      view.JoinCode,
				Status:      view.Status,
				PlayerCount: view.PlayerCount,
				CreatedAt:   view.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"activeGames": len(games),
			"games":       games,
		})
	}
}

func DeleteGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Delete(chi.URLParam(r, "gameID")); err != nil {
			writeError(w, http.StatusNotFound, game.Message(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Game deleted successfully",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
