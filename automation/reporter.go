package automation

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one progress frame pushed to the automation client.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ProgressReporter is an interface for reporting automation progress.
type ProgressReporter interface {
	// Send sends a progress update
	Send(event *Event) error
}

// NoOpProgressReporter implements ProgressReporter with no-op operations
type NoOpProgressReporter struct{}

// Send does nothing
func (r *NoOpProgressReporter) Send(event *Event) error {
	return nil
}

// WebsocketProgressReporter streams events over one websocket
// connection. Writes are serialized; gorilla conns allow only one
// concurrent writer.
type WebsocketProgressReporter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebsocketProgressReporter(conn *websocket.Conn) *WebsocketProgressReporter {
	return &WebsocketProgressReporter{conn: conn}
}

func (r *WebsocketProgressReporter) Send(event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteJSON(event)
}

// Helper functions for creating progress events

func NewLogMessage(level, message string) *Event {
	return &Event{Event: "log_message", Data: map[string]any{
		"level":   level,
		"message": message,
	}}
}

func NewPlanReady(plan any) *Event {
	return &Event{Event: "plan_ready", Data: plan}
}

func NewStepUpdate(stepID int, status, action, target, errMsg string) *Event {
	data := map[string]any{
		"step_id": stepID,
		"status":  status,
		"action":  action,
		"target":  target,
	}
	if errMsg != "" {
		data["error"] = errMsg
	}
	return &Event{Event: "step_update", Data: data}
}

func NewStatus(message string) *Event {
	return &Event{Event: "status", Data: map[string]any{"message": message}}
}

func NewTaskSuccess(message string) *Event {
	return &Event{Event: "task_success", Data: map[string]any{"message": message}}
}

func NewTaskError(message string) *Event {
	return &Event{Event: "task_error", Data: map[string]any{"message": message}}
}

func NewTaskCompleted() *Event {
	return &Event{Event: "task_completed", Data: map[string]any{}}
}

func NewError(message string) *Event {
	return &Event{Event: "error", Data: map[string]any{"message": message}}
}
