package api

import (
	"net/http"
	"time"

	"codearena/internal/api/handler"
	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	roomService *service.RoomService,
	problemService *service.ProblemService,
	rankService *service.RankService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup
	// It will search for a token in "Authorization: Bearer T".
	r.Use(jwtauth.Verifier(security.TokenAuth)) // Verifies token, puts claims in context

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Room lifecycle routes (authenticated)
		roomHandler := handler.NewRoomHandler(roomService)
		v1.Route("/rooms", roomHandler.RegisterRoutes)

		// Problem routes (authenticated, create is admin only)
		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		// Rank and pending-room lookups (authenticated)
		rankHandler := handler.NewRankHandler(rankService, roomService)
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.Authenticator)
			authed.Get("/rank", rankHandler.GetRank)
			authed.Get("/pending-rooms", rankHandler.GetPendingRoom)
		})
	})

	return r
}
