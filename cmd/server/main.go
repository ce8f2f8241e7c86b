package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codearena/internal/api"
	"codearena/internal/app/service"
	"codearena/internal/app/worker"
	"codearena/internal/common/security"
	"codearena/internal/domain/repository"
	"codearena/internal/platform/broadcast"
	"codearena/internal/platform/config"
	"codearena/internal/platform/database"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()

	// 3. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 4. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 5. Initialize Redis
	broadcast.ConnectRedis()
	defer broadcast.CloseRedis()
	fmt.Println("Redis connected.")

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	roomRepo := repository.NewPgRoomRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	rankRepo := repository.NewPgRankRepository(database.DB)

	// 7. Initialize Services
	broadcaster := broadcast.NewRedisBroadcaster(broadcast.RDB)
	authService := service.NewAuthService(userRepo)
	roomService := service.NewRoomService(roomRepo, problemRepo, submissionRepo, userRepo, broadcaster, logger, database.DB)
	problemService := service.NewProblemService(problemRepo, database.DB)
	rankService := service.NewRankService(rankRepo, userRepo)

	// 8. Initialize Timeout Sweeper
	sweeper := worker.NewTimeoutSweeper(roomRepo, roomService, logger, config.AppConfig.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Could not start timeout sweeper", zap.Error(err))
	}
	fmt.Println("Timeout sweeper started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(authService, roomService, problemService, rankService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Could not listen", zap.String("port", config.AppConfig.APIPort), zap.Error(err))
		}
	}()
	logger.Info("Server started successfully")

	<-stop // Wait for interrupt signal

	logger.Info("Shutting down server...")
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server and sweeper stopped gracefully")
}
