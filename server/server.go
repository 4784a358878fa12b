// Package server exposes the HTTP and websocket API: chat, uploads and
// analysis, document generation, email, calendar events and browser
// automation.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/viser-ai/viser-server/automation"
	"github.com/viser-ai/viser-server/calendar"
	"github.com/viser-ai/viser-server/config"
	"github.com/viser-ai/viser-server/documents"
	"github.com/viser-ai/viser-server/llm"
	"github.com/viser-ai/viser-server/memory"
	"github.com/viser-ai/viser-server/store"
)

// EmailSender is the slice of mailer.Sender the handlers need.
type EmailSender interface {
	Enabled() bool
	Send(to, subject, htmlBody, attachmentPath, attachmentName string) error
	DefaultRecipient() string
}

// ImageAnalyzer describes the vision capability used for image uploads.
// Only the Gemini client provides it.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, prompt, mimeType, base64Data string) (string, error)
}

// Deps carries everything the server wires together. Client is nil when
// the provider is "fallback"; Vision is nil when no Gemini key is set.
type Deps struct {
	Config        *config.AppConfig
	Client        llm.Client
	Vision        ImageAnalyzer
	Conversations *memory.ConversationManager
	Files         *store.FileRepository
	Documents     *store.DocumentRepository
	Generator     *documents.Generator
	Email         EmailSender
	Calendar      *calendar.Service
	Runner        *automation.Runner
}

type Server struct {
	cfg       *config.AppConfig
	client    llm.Client
	vision    ImageAnalyzer
	conv      *memory.ConversationManager
	files     *store.FileRepository
	docs      *store.DocumentRepository
	generator *documents.Generator
	email     EmailSender
	calendar  *calendar.Service
	runner    *automation.Runner

	// openaiGate enforces the minimum gap between OpenAI calls. Nil for
	// every other provider.
	openaiGate *rate.Limiter
}

func New(deps Deps) *Server {
	s := &Server{
		cfg:       deps.Config,
		client:    deps.Client,
		vision:    deps.Vision,
		conv:      deps.Conversations,
		files:     deps.Files,
		docs:      deps.Documents,
		generator: deps.Generator,
		email:     deps.Email,
		calendar:  deps.Calendar,
		runner:    deps.Runner,
	}
	if deps.Config.Provider() == "openai" && deps.Config.OpenAICallGap > 0 {
		s.openaiGate = rate.NewLimiter(rate.Every(deps.Config.OpenAICallGap), 1)
	}
	return s
}

func (s *Server) fallbackMode() bool {
	return s.client == nil || s.cfg.Provider() == "fallback"
}

// Routes builds the gin engine with all endpoints and middleware.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	corsCfg := cors.DefaultConfig()
	if s.cfg.CORSOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{s.cfg.CORSOrigin}
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	api.Use(rateLimit(s.cfg.RateLimitQPS))
	{
		api.POST("/chat", s.handleChat)
		api.POST("/chat/stream", s.handleChatStream)

		api.POST("/upload", s.handleUpload)
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/context", s.handleContext)
		api.POST("/clear-context", s.handleClearContext)

		api.POST("/generate-document", s.handleGenerateDocument)
		api.GET("/download/:file_id", s.handleDownload)
		api.GET("/documents", s.handleListDocuments)
		api.GET("/documents/:file_id", s.handleDocumentDetails)
		api.DELETE("/documents/:file_id/delete", s.handleDeleteDocument)
		api.GET("/document-formats", s.handleDocumentFormats)

		api.POST("/email-analysis", s.handleEmailAnalysis)
		api.POST("/email-notification", s.handleEmailNotification)
		api.GET("/email-config", s.handleEmailConfig)
		api.POST("/test-email", s.handleTestEmail)

		api.GET("/calendar-events", s.handleListCalendarEvents)
		api.POST("/calendar-events", s.handleCreateCalendarEvent)
		api.GET("/calendar-events/today", s.handleTodayCalendarEvents)
		api.GET("/calendar-events/:event_id", s.handleGetCalendarEvent)
		api.PUT("/calendar-events/:event_id", s.handleUpdateCalendarEvent)
		api.DELETE("/calendar-events/:event_id", s.handleDeleteCalendarEvent)
		api.POST("/calendar-events/upload-image", s.handleCalendarUploadImage)
		api.POST("/calendar-events/send-now/:event_id", s.handleCalendarSendNow)

		api.GET("/repo/files", s.handleRepoFiles)
		api.GET("/repo/load/:filename", s.handleRepoLoad)
	}

	r.GET("/ws/automation", s.handleAutomationWS)

	r.GET("/", s.handleIndex)
	r.NoRoute(s.handleStatic)

	return r
}

// Timeout for a single LLM round trip.
func (s *Server) llmTimeout() time.Duration {
	if s.cfg.APITimeout > 0 {
		return s.cfg.APITimeout
	}
	return 120 * time.Second
}
