package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Rascal55/MusicQuizApp/internal/hub"
	"github.com/Rascal55/MusicQuizApp/internal/ws"
)

func SetupRoutes(h *hub.Hub, allowedOrigin string, originPatterns []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/api/health", Health)
	r.Post("/api/game/create", CreateGame(h))
	r.Get("/api/game/{gameID}", GetGame(h))
	r.Get("/api/games", ListGames(h))
	r.Delete("/api/game/{gameID}", DeleteGame(h))
	r.Get("/ws", ws.Handler(h, originPatterns, log))

	return r
}
