package routes

import (
	"github.com/adilzhk/tournament-badges/handlers"
	"github.com/adilzhk/tournament-badges/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes настраивает маршрутизатор приложения.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	winnerHandler *handlers.WinnerHandler,
	nftHandler *handlers.NFTHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireOrganizer := middleware.RequireOrganizer(jwtSecret)

	router.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", authHandler.LoginHandler)

		// Админка: только для организатора.
		r.Group(func(r chi.Router) {
			r.Use(requireOrganizer)

			r.Post("/admin/create-tournament", tournamentHandler.CreateHandler)
			r.Get("/admin/tournaments", tournamentHandler.ListHandler)
			r.Get("/admin/tournament/{tournamentID}", tournamentHandler.GetByIDHandler)
			r.Delete("/admin/tournament/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/admin/tournament/{tournamentID}/badge-image", tournamentHandler.UploadBadgeImageHandler)

			r.Post("/winner/submit-results", winnerHandler.SubmitResultsHandler)
			r.Post("/winner/declare-winner", winnerHandler.DeclareWinnerHandler)
			r.Post("/nft/mint/{winnerID}", nftHandler.MintHandler)
		})

		// Публичные маршруты.
		r.Post("/tournament/register", teamHandler.RegisterHandler)
		r.Get("/tournament/available", tournamentHandler.ListAvailableHandler)
		r.Get("/tournament/{tournamentID}/teams", teamHandler.ListByTournamentHandler)
		r.Get("/tournament/{tournamentID}/matches", matchHandler.ListByTournamentHandler)

		r.Get("/winner/hall-of-champions", winnerHandler.HallOfChampionsHandler)
		r.Get("/winner/by-wallet/{walletAddress}", winnerHandler.WinsByWalletHandler)
		r.Get("/nft/winner/{winnerID}", nftHandler.GetWinnerNFTHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
