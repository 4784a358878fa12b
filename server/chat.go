package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/llm"
	"github.com/viser-ai/viser-server/mailer"
	"github.com/viser-ai/viser-server/markdown"
	"github.com/viser-ai/viser-server/prompts"
)

const defaultSessionID = "default_session"

// Reply used when no AI provider is configured.
const fallbackChatReply = "fallback: Please provide your data files or a specific BI question."

// Follow-up sent when the model was asked for a table but returned prose.
const tableRetryPrompt = "Please provide ONLY a valid Markdown table with headers, one separator row, and real data rows."

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (r *chatRequest) sessionID() string {
	if r.SessionID == "" {
		return defaultSessionID
	}
	return r.SessionID
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}
	sessionID := req.sessionID()

	if err := s.conv.AddUserMessage(sessionID, req.Message); err != nil {
		logger.Error("Failed to record user message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record message"})
		return
	}
	s.conv.CleanupIdleSessions()

	if cmd := mailer.DetectEmailCommand(req.Message); cmd != nil {
		reply, sent := s.runEmailCommand(sessionID, cmd)
		s.recordAssistantReply(sessionID, reply)
		c.JSON(http.StatusOK, gin.H{
			"response":   reply,
			"session_id": sessionID,
			"email_sent": sent,
		})
		return
	}

	if s.fallbackMode() {
		s.recordAssistantReply(sessionID, fallbackChatReply)
		c.JSON(http.StatusOK, gin.H{"response": fallbackChatReply, "session_id": sessionID})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.llmTimeout())
	defer cancel()

	response, err := s.chatResponse(ctx, sessionID, req.Message)
	if err != nil {
		logger.Error("Chat inference failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("AI request failed: %v", err)})
		return
	}

	s.recordAssistantReply(sessionID, response)
	c.JSON(http.StatusOK, gin.H{"response": response, "session_id": sessionID})
}

// chatResponse runs the full inference pipeline for one user turn: system
// prompt with file context, history, one table-repair retry when a table
// was requested but not delivered.
func (s *Server) chatResponse(ctx context.Context, sessionID, message string) (string, error) {
	if s.openaiGate != nil {
		if err := s.openaiGate.Wait(ctx); err != nil {
			return "", err
		}
	}

	fileContext, err := s.conv.FileContext(sessionID)
	if err != nil {
		return "", err
	}
	systemPrompt, err := prompts.RenderChatSystemPrompt(fileContext)
	if err != nil {
		return "", err
	}
	history, err := s.conv.History(sessionID)
	if err != nil {
		return "", err
	}

	response, err := s.generate(ctx, history,
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0.6),
		llm.WithMaxTokens(8192))
	if err != nil {
		return "", err
	}

	if strings.Contains(strings.ToLower(message), "table") && !markdown.IsValidTable(response) {
		retryHistory := append(history,
			llm.Message{Role: "assistant", Content: response},
			llm.Message{Role: "user", Content: tableRetryPrompt})
		retry, err := s.generate(ctx, retryHistory,
			llm.WithSystemPrompt(systemPrompt),
			llm.WithTemperature(0.6),
			llm.WithMaxTokens(8192))
		if err != nil {
			logger.Error("Table retry failed, keeping first answer", zap.Error(err))
			return response, nil
		}
		response = markdown.RepairTable(retry)
	}
	return response, nil
}

// generate collects a full non-stream response from the client.
func (s *Server) generate(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	var sb strings.Builder
	err := s.client.GenerateInference(ctx, messages, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	}, opts...)
	return sb.String(), err
}

// runEmailCommand handles "send ... to someone@example.com" chat turns.
// Returns the assistant reply and whether an email went out.
func (s *Server) runEmailCommand(sessionID string, cmd *mailer.EmailCommand) (string, bool) {
	if !s.email.Enabled() {
		return "Email sending is not configured on this server, so I could not send your message.", false
	}

	content := cmd.Content
	subject := "Message from Viser AI"
	if cmd.SendPreviousResponse {
		prev, err := s.conv.LastAssistantReply(sessionID)
		if err != nil {
			logger.Error("Failed to load previous reply", zap.Error(err))
			return "I could not load the previous response to send.", false
		}
		if prev == "" {
			return "There is no previous response to send yet.", false
		}
		content = prev
		subject = "AI Response from Viser AI"
	}

	recipient := cmd.Recipient
	if recipient == "" {
		recipient = s.email.DefaultRecipient()
	}
	if recipient == "" {
		return "I could not find a recipient for your email. Include an address like name@example.com.", false
	}

	body, err := mailer.SimpleBody(content, sessionID)
	if err != nil {
		logger.Error("Failed to render email body", zap.Error(err))
		return "Something went wrong while preparing your email.", false
	}
	if err := s.email.Send(recipient, subject, body, "", ""); err != nil {
		return fmt.Sprintf("❌ Failed to send email to %s: %v", recipient, err), false
	}

	display := content
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	return fmt.Sprintf("✅ Email sent successfully to %s!\n\nMessage: %q", recipient, display), true
}

func (s *Server) recordAssistantReply(sessionID, reply string) {
	if err := s.conv.AddAssistantMessage(sessionID, reply); err != nil {
		logger.Error("Failed to record assistant reply", zap.Error(err))
	}
}

// handleChatStream answers over SSE: one {"content": chunk} frame per
// token batch, then [DONE]. Email commands and fallback mode answer in a
// single frame.
func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}
	sessionID := req.sessionID()

	if err := s.conv.AddUserMessage(sessionID, req.Message); err != nil {
		logger.Error("Failed to record user message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record message"})
		return
	}
	s.conv.CleanupIdleSessions()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if cmd := mailer.DetectEmailCommand(req.Message); cmd != nil {
		reply, _ := s.runEmailCommand(sessionID, cmd)
		s.recordAssistantReply(sessionID, reply)
		writeSSEChunk(c, reply)
		writeSSEDone(c)
		return
	}
	if s.fallbackMode() {
		s.recordAssistantReply(sessionID, fallbackChatReply)
		writeSSEChunk(c, fallbackChatReply)
		writeSSEDone(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.llmTimeout())
	defer cancel()

	if s.openaiGate != nil {
		if err := s.openaiGate.Wait(ctx); err != nil {
			writeSSEError(c, err)
			return
		}
	}

	fileContext, err := s.conv.FileContext(sessionID)
	if err != nil {
		writeSSEError(c, err)
		return
	}
	systemPrompt, err := prompts.RenderChatSystemPrompt(fileContext)
	if err != nil {
		writeSSEError(c, err)
		return
	}
	history, err := s.conv.History(sessionID)
	if err != nil {
		writeSSEError(c, err)
		return
	}

	var full strings.Builder
	err = s.client.GenerateInference(ctx, history, func(chunk string) error {
		full.WriteString(chunk)
		writeSSEChunk(c, chunk)
		return nil
	},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0.6),
		llm.WithMaxTokens(8192),
		llm.WithStreaming(true))
	if err != nil {
		logger.Error("Chat stream failed", zap.Error(err))
		writeSSEError(c, err)
		return
	}

	s.recordAssistantReply(sessionID, full.String())
	writeSSEDone(c)
}

func writeSSEChunk(c *gin.Context, content string) {
	payload, _ := json.Marshal(gin.H{"content": content})
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}

func writeSSEError(c *gin.Context, err error) {
	payload, _ := json.Marshal(gin.H{"error": err.Error()})
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}

func writeSSEDone(c *gin.Context) {
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}
