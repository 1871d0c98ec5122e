package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/config"
	"github.com/aiexam/aiexam-backend/internal/handler"
	"github.com/aiexam/aiexam-backend/internal/llm"
	"github.com/aiexam/aiexam-backend/internal/logger"
	"github.com/aiexam/aiexam-backend/internal/repository"
	"github.com/aiexam/aiexam-backend/internal/router"
	"github.com/aiexam/aiexam-backend/internal/service"
	"github.com/aiexam/aiexam-backend/internal/validator"
	"github.com/aiexam/aiexam-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		// Fail fast on missing credentials rather than limping along.
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("llm_model", cfg.LLMModel).
		Msg("Starting AI Exam Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Initialize In-Memory Stores ───────────────────────────────────
	// Exams, sessions and results live only in process memory; any
	// persistence layer is an external collaborator.
	examRepo := repository.NewExamRepository()
	sessionRepo := repository.NewExamSessionRepository()
	resultRepo := repository.NewResultRepository()

	// ─── Initialize Services ──────────────────────────────────────────
	completer := llm.NewClient(
		cfg.LLMBaseURL,
		cfg.LLMAPIKey,
		cfg.LLMModel,
		cfg.LLMMaxTokens,
		cfg.LLMTemperature,
		cfg.LLMTimeout,
	)
	generationService := service.NewGenerationService(completer, cfg.MaxQuestionCount, log)
	examService := service.NewExamService(examRepo, log)
	sessionService := service.NewExamSessionService(sessionRepo, resultRepo, examService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Generation:    handler.NewGenerationHandler(generationService),
		Exam:          handler.NewExamHandler(examService),
		StudentPortal: handler.NewStudentPortalHandler(sessionService),
		WS:            handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	clockWorker := worker.NewSessionClockWorker(sessionService, log)
	go clockWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
