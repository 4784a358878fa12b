package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/automation"
	"github.com/viser-ai/viser-server/calendar"
	"github.com/viser-ai/viser-server/config"
	"github.com/viser-ai/viser-server/documents"
	"github.com/viser-ai/viser-server/llm"
	"github.com/viser-ai/viser-server/mailer"
	"github.com/viser-ai/viser-server/memory"
	"github.com/viser-ai/viser-server/planner"
	"github.com/viser-ai/viser-server/server"
	"github.com/viser-ai/viser-server/store"
)

func main() {
	dotenv.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	for _, dir := range []string{
		cfg.DataDir,
		cfg.UploadDir,
		filepath.Join(cfg.UploadDir, "images"),
		filepath.Join(cfg.UploadDir, "documents"),
		filepath.Join(cfg.UploadDir, "calendar"),
		cfg.DownloadDir,
		cfg.ArchiveDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("Failed to create directory",
				zap.String("dir", dir), zap.Error(err))
		}
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	sessions := store.NewSessionRepository(db)
	files := store.NewFileRepository(db)
	docs := store.NewDocumentRepository(db)
	events := store.NewCalendarRepository(db)

	conversations := memory.NewConversationManager(sessions, files, cfg.MaxUserTurns, cfg.SessionTTL)
	generator := documents.NewGenerator(cfg.DownloadDir, docs)
	sender := mailer.NewSender(cfg.Email)

	calendarSvc := calendar.NewService(events, sender)
	if err := calendarSvc.StartScheduler(); err != nil {
		logger.Fatal("Failed to start calendar scheduler", zap.Error(err))
	}
	defer calendarSvc.Stop()

	providerCfg := llm.ProviderConfig{
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
		GroqAPIKey:   cfg.GroqAPIKey,
		GroqModel:    cfg.GroqModel,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OllamaModel:  cfg.OllamaModel,
		Timeout:      cfg.APITimeout,
	}

	var client llm.Client
	if cfg.Provider() != "fallback" {
		client, err = llm.NewClientFor(cfg.Provider(), providerCfg)
		if err != nil {
			logger.Fatal("Failed to build AI client",
				zap.String("provider", cfg.Provider()), zap.Error(err))
		}
		logger.Info("AI provider ready",
			zap.String("provider", cfg.Provider()), zap.String("model", client.GetModel()))
	} else {
		logger.Info("Running in fallback mode, no AI provider configured")
	}

	// Vision runs through Gemini whenever a key is present, regardless of
	// which provider answers chat.
	var vision server.ImageAnalyzer
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.APITimeout)
		if err != nil {
			logger.Fatal("Failed to build Gemini client", zap.Error(err))
		}
		vision = gemini
	}

	var runner *automation.Runner
	if client != nil {
		runner = automation.NewRunner(planner.New(client), automation.NewExecutor(cfg.Browser), cfg.Provider())
	} else {
		runner = automation.NewRunner(planner.New(noopClient{}), automation.NewExecutor(cfg.Browser), cfg.Provider())
	}
	// Automation clients may ask for a different provider per task.
	runner.UseProviderFactory(func(name string) (*planner.Planner, error) {
		c, err := llm.NewClientFor(name, providerCfg)
		if err != nil {
			return nil, err
		}
		return planner.New(c), nil
	})

	srv := server.New(server.Deps{
		Config:        cfg,
		Client:        client,
		Vision:        vision,
		Conversations: conversations,
		Files:         files,
		Documents:     docs,
		Generator:     generator,
		Email:         sender,
		Calendar:      calendarSvc,
		Runner:        runner,
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Routes(),
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}

// noopClient keeps the automation planner wired in fallback mode; every
// plan degrades to the single-instruction fallback step.
type noopClient struct{}

func (noopClient) GenerateInference(ctx context.Context, messages []llm.Message, callback func(chunk string) error, opts ...llm.Option) error {
	return errors.New("no AI provider configured")
}

func (noopClient) GetModel() string { return "fallback" }
