package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/interviewcoach/backend/internal/api"
	"github.com/interviewcoach/backend/internal/auth"
	"github.com/interviewcoach/backend/internal/infrastructure/config"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/prompts"
	"github.com/interviewcoach/backend/internal/service"
	"github.com/interviewcoach/backend/internal/speech"
	"github.com/interviewcoach/backend/internal/store"

	_ "github.com/interviewcoach/backend/docs" // generated swagger docs
)

// @title           Interview Coach API
// @version         1.0
// @description     Multi-round mock interviews: questions, per-answer grading and an end-of-session coaching report.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	authn, err := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		logger.Error("failed to configure auth", "error", err)
		os.Exit(1)
	}

	gen := llm.NewClient(cfg.LLMURL, cfg.LLMModel, cfg.LLMAPIKey, cfg.LLMTimeout)

	var stt speech.Transcriber
	if cfg.STTURL != "" {
		stt = speech.NewClient(cfg.STTURL, cfg.STTModel, cfg.STTAPIKey, cfg.STTTimeout)
	} else {
		logger.Warn("STT_URL not set, audio answers are disabled")
	}

	svc := service.NewInterviewService(db, gen, stt, prompts.Default(), logger, service.Options{
		DefaultQuestions:  cfg.DefaultQuestions,
		MaxQuestions:      cfg.MaxQuestions,
		GenerationTimeout: cfg.LLMTimeout,
	})
	handler := api.NewHandler(svc, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.Health)
	api.RegisterRoutes(mux, handler, authn)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux (auth is per route) ──
	logged := api.Logging(logger)(api.CORS(cfg.CORSOrigin)(mux))

	// ── Server ──────────────────────────────────────────────────────
	// Requests wait on generation, so the write timeout leaves room for
	// up to three upstream calls (transcribe, grade, next question).
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.LLMTimeout*2 + cfg.STTTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server",
		"address", cfg.ServerAddress,
		"llm_model", gen.Model(),
		"database", cfg.DatabasePath,
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
