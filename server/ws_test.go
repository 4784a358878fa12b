package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viser-ai/viser-server/automation"
	"github.com/viser-ai/viser-server/planner"
)

type stubExecutor struct {
	err error
}

func (s *stubExecutor) Execute(ctx context.Context, url string, steps []planner.Step, reporter automation.ProgressReporter) error {
	return s.err
}

type wsEvent struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func dialAutomation(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(env.router)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/automation"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var e wsEvent
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func newAutomationEnv(t *testing.T) *testEnv {
	return newTestEnv(t, func(deps *Deps) {
		client := &fakeClient{responses: []string{
			`[{"step": 1, "action": "CLICK", "target": "#buy", "value": "", "description": "Click buy"}]`,
		}}
		deps.Runner = automation.NewRunner(planner.New(client), &stubExecutor{}, "ollama")
	})
}

func TestAutomationWSRejectsIncompleteTask(t *testing.T) {
	env := newAutomationEnv(t)
	conn := dialAutomation(t, env)

	// Greeting frame first.
	e := readEvent(t, conn)
	assert.Equal(t, "status", e.Event)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "execute_task",
		"data":  map[string]any{"url": "https://example.com"},
	}))
	e = readEvent(t, conn)
	assert.Equal(t, "error", e.Event)
	assert.Contains(t, e.Data["message"], "required")
}

func TestAutomationWSRunsTask(t *testing.T) {
	env := newAutomationEnv(t)
	conn := dialAutomation(t, env)
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "execute_task",
		"data": map[string]any{
			"url":    "https://example.com",
			"prompt": "buy the thing",
		},
	}))

	var seen []string
	for {
		e := readEvent(t, conn)
		seen = append(seen, e.Event)
		if e.Event == "task_completed" {
			break
		}
	}
	assert.Contains(t, seen, "plan_ready")
	assert.Contains(t, seen, "task_success")
}

func TestAutomationWSHonorsProviderField(t *testing.T) {
	asked := make(chan string, 1)
	env := newTestEnv(t, func(deps *Deps) {
		stepsJSON := `[{"step": 1, "action": "CLICK", "target": "#buy", "value": "", "description": "Click buy"}]`
		runner := automation.NewRunner(
			planner.New(&fakeClient{responses: []string{stepsJSON}}),
			&stubExecutor{}, "ollama")
		runner.UseProviderFactory(func(provider string) (*planner.Planner, error) {
			asked <- provider
			agent := &fakeClient{responses: []string{
				`{"task_description": "buy the thing"}`,
				stepsJSON,
			}}
			return planner.New(agent), nil
		})
		deps.Runner = runner
	})
	conn := dialAutomation(t, env)
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "execute_task",
		"data": map[string]any{
			"url":      "https://example.com",
			"prompt":   "buy the thing",
			"provider": "gemini",
		},
	}))

	var seen []string
	for {
		e := readEvent(t, conn)
		seen = append(seen, e.Event)
		if e.Event == "task_completed" {
			break
		}
	}
	assert.Contains(t, seen, "task_success")

	select {
	case got := <-asked:
		assert.Equal(t, "gemini", got)
	default:
		t.Fatal("provider override was never consulted")
	}
}

func TestAutomationWSUnknownEvent(t *testing.T) {
	env := newAutomationEnv(t)
	conn := dialAutomation(t, env)
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "ping"}))
	e := readEvent(t, conn)
	assert.Equal(t, "error", e.Event)
	assert.Contains(t, e.Data["message"], "Unknown event")
}
