package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is the full runtime configuration, loaded from environment
// variables. Every field has a default so the server boots with nothing
// but the provider API keys set.
type AppConfig struct {
	OwnerName  string
	ListenAddr string
	CORSOrigin string

	// Which LLM answers chat and analysis: groq | openai | gemini | ollama | fallback.
	AIProvider string

	OpenAIAPIKey string
	OpenAIModel  string
	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	OllamaModel  string

	// Seconds to wait for an LLM API response.
	APITimeout time.Duration
	// Minimum gap between consecutive OpenAI calls.
	OpenAICallGap time.Duration

	Email EmailConfig

	// Directories. All are created on boot if missing.
	DataDir     string
	UploadDir   string
	DownloadDir string
	ArchiveDir  string
	StaticDir   string

	DatabasePath string

	// Conversation window: max user turns kept per session.
	MaxUserTurns   int
	SessionTTL     time.Duration
	RateLimitQPS   int
	MaxContentSize int

	Browser BrowserConfig
}

type EmailConfig struct {
	Enabled          bool
	SMTPServer       string
	SMTPPort         int
	SenderEmail      string
	AppPassword      string
	OwnerEmail       string
	DefaultRecipient string
}

type BrowserConfig struct {
	Headless     bool
	Bin          string
	NavTimeout   time.Duration
	StepDelay    time.Duration
	ScreenshotTo string
}

// Load reads configuration from the environment. dotenv.LoadEnv should
// run before this so a local .env file is honored.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("OWNER_NAME", "Vishnu")
	v.SetDefault("LISTEN_ADDR", ":8000")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("AI_PROVIDER", "gemini")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("GROQ_MODEL", "llama-3.1-8b-instant")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OLLAMA_MODEL", "llama3.1")
	v.SetDefault("API_TIMEOUT", 120)
	v.SetDefault("OPENAI_CALL_GAP", 5)

	v.SetDefault("EMAIL_ENABLED", true)
	v.SetDefault("SMTP_SERVER", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("DOWNLOAD_DIR", "downloads")
	v.SetDefault("ARCHIVE_DIR", "archive")
	v.SetDefault("STATIC_DIR", "web")
	v.SetDefault("DATABASE_PATH", "data/viser.db")

	v.SetDefault("MAX_USER_TURNS", 10)
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("RATE_LIMIT_QPS", 20)
	v.SetDefault("MAX_CONTENT_SIZE", 50000)

	v.SetDefault("BROWSER_HEADLESS", false)
	v.SetDefault("BROWSER_BIN", "")
	v.SetDefault("BROWSER_NAV_TIMEOUT", 30)
	v.SetDefault("BROWSER_STEP_DELAY", 1)
	v.SetDefault("BROWSER_SCREENSHOT", "browser_result.png")

	cfg := &AppConfig{
		OwnerName:  v.GetString("OWNER_NAME"),
		ListenAddr: v.GetString("LISTEN_ADDR"),
		CORSOrigin: v.GetString("CORS_ORIGIN"),

		AIProvider: strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER"))),

		OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),
		OpenAIModel:  v.GetString("OPENAI_MODEL"),
		GroqAPIKey:   v.GetString("GROQ_API_KEY"),
		GroqModel:    v.GetString("GROQ_MODEL"),
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),
		OllamaModel:  v.GetString("OLLAMA_MODEL"),

		APITimeout:    time.Duration(v.GetInt("API_TIMEOUT")) * time.Second,
		OpenAICallGap: time.Duration(v.GetInt("OPENAI_CALL_GAP")) * time.Second,

		Email: EmailConfig{
			Enabled:          v.GetBool("EMAIL_ENABLED"),
			SMTPServer:       v.GetString("SMTP_SERVER"),
			SMTPPort:         v.GetInt("SMTP_PORT"),
			SenderEmail:      v.GetString("SENDER_EMAIL"),
			AppPassword:      v.GetString("APP_PASSWORD"),
			OwnerEmail:       v.GetString("OWNER_EMAIL"),
			DefaultRecipient: v.GetString("DEFAULT_RECIPIENT"),
		},

		DataDir:     v.GetString("DATA_DIR"),
		UploadDir:   v.GetString("UPLOAD_DIR"),
		DownloadDir: v.GetString("DOWNLOAD_DIR"),
		ArchiveDir:  v.GetString("ARCHIVE_DIR"),
		StaticDir:   v.GetString("STATIC_DIR"),

		DatabasePath: v.GetString("DATABASE_PATH"),

		MaxUserTurns:   v.GetInt("MAX_USER_TURNS"),
		SessionTTL:     time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour,
		RateLimitQPS:   v.GetInt("RATE_LIMIT_QPS"),
		MaxContentSize: v.GetInt("MAX_CONTENT_SIZE"),

		Browser: BrowserConfig{
			Headless:     v.GetBool("BROWSER_HEADLESS"),
			Bin:          v.GetString("BROWSER_BIN"),
			NavTimeout:   time.Duration(v.GetInt("BROWSER_NAV_TIMEOUT")) * time.Second,
			StepDelay:    time.Duration(v.GetInt("BROWSER_STEP_DELAY")) * time.Second,
			ScreenshotTo: v.GetString("BROWSER_SCREENSHOT"),
		},
	}

	return cfg, nil
}

// Provider returns the configured LLM provider name.
func (c *AppConfig) Provider() string {
	if c.AIProvider == "" {
		return "groq"
	}
	return c.AIProvider
}

// SMTPConfigured reports whether the minimum SMTP settings are present.
func (c *EmailConfig) SMTPConfigured() bool {
	return c.SMTPServer != "" && c.SenderEmail != "" && c.AppPassword != ""
}
