package server

import (
	"net/http"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/automation"
)

// automationFrame is one inbound message on the automation socket.
type automationFrame struct {
	Event string `json:"event"`
	Data  struct {
		URL      string `json:"url"`
		Prompt   string `json:"prompt"`
		Provider string `json:"provider"`
	} `json:"data"`
}

func (s *Server) wsUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if s.cfg.CORSOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == s.cfg.CORSOrigin
		},
	}
}

// handleAutomationWS serves the browser automation socket. The client
// sends execute_task frames; progress streams back as events until
// task_completed.
func (s *Server) handleAutomationWS(c *gin.Context) {
	conn, err := s.wsUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	reporter := automation.NewWebsocketProgressReporter(conn)
	reporter.Send(automation.NewStatus("Connected to automation service"))

	for {
		var frame automationFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("Websocket read failed", zap.Error(err))
			}
			return
		}

		if frame.Event != "execute_task" {
			reporter.Send(automation.NewError("Unknown event: " + frame.Event))
			continue
		}
		url, prompt := frame.Data.URL, frame.Data.Prompt
		if url == "" || prompt == "" {
			reporter.Send(automation.NewError("url and prompt are required"))
			continue
		}
		provider := frame.Data.Provider

		logger.Info("Automation task requested",
			zap.String("url", url), zap.String("provider", provider))
		go func() {
			if err := s.runner.Run(c.Request.Context(), url, prompt, provider, reporter); err != nil {
				logger.Error("Automation task ended with error", zap.Error(err))
			}
		}()
	}
}
