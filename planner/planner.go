// Package planner asks an LLM to turn a natural-language request into an
// executable browser step plan.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/llm"
	"github.com/viser-ai/viser-server/prompts"
)

// Step is one planned browser action.
type Step struct {
	ID          int    `json:"id"`
	Action      string `json:"action"`
	Target      string `json:"target"`
	Value       string `json:"value"`
	Instruction string `json:"instruction"`
	Status      string `json:"status"`
}

// Objective summarizes a step for progress reporting.
type Objective struct {
	Type        string `json:"type"`
	Target      string `json:"target"`
	Description string `json:"description"`
}

// Plan is a full automation plan for one request.
type Plan struct {
	RequestID   string      `json:"request_id"`
	Timestamp   string      `json:"timestamp"`
	Model       string      `json:"ai_model"`
	UserRequest string      `json:"user_request"`
	Intent      Intent      `json:"intent"`
	Objectives  []Objective `json:"objectives"`
	Steps       []Step      `json:"steps"`
	Status      string      `json:"status"`
	Error       string      `json:"error,omitempty"`
}

// TaskPlan is the free-form variant for agent-driven automation.
type TaskPlan struct {
	RequestID       string `json:"request_id"`
	Timestamp       string `json:"timestamp"`
	Model           string `json:"ai_model"`
	UserRequest     string `json:"user_request"`
	TaskDescription string `json:"task_description"`
	ExecutionType   string `json:"execution_type"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

// Planner drives the planning prompts against an LLM client.
type Planner struct {
	client llm.Client
	now    func() time.Time
}

func New(client llm.Client) *Planner {
	return &Planner{client: client, now: time.Now}
}

func (p *Planner) requestID() string {
	t := p.now()
	return fmt.Sprintf("%s_%03d", t.Format("20060102_150405"), t.Nanosecond()/1e6)
}

// rawStep is the JSON shape the model is asked to produce.
type rawStep struct {
	Step        int    `json:"step"`
	Action      string `json:"action"`
	Target      string `json:"target"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// PlanSteps asks the model for a step plan. A malformed response falls
// back to a single INSTRUCTION step carrying the raw request, so
// execution always has something to do.
func (p *Planner) PlanSteps(ctx context.Context, userRequest string) *Plan {
	rid := p.requestID()
	plan := &Plan{
		RequestID:   rid,
		Timestamp:   p.now().Format(time.RFC3339),
		Model:       p.client.GetModel(),
		UserRequest: userRequest,
		Intent:      InferIntent(userRequest),
		Status:      "planned",
	}

	systemPrompt, err := prompts.RenderStepPlannerPrompt()
	if err != nil {
		return p.failedPlan(plan, err)
	}

	var raw strings.Builder
	err = p.client.GenerateInference(ctx,
		[]llm.Message{{Role: "user", Content: userRequest}},
		func(chunk string) error {
			raw.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(1000),
	)
	if err != nil {
		return p.failedPlan(plan, err)
	}

	steps := parseSteps(raw.String(), userRequest)
	for _, s := range steps {
		plan.Steps = append(plan.Steps, Step{
			ID:          s.Step,
			Action:      s.Action,
			Target:      s.Target,
			Value:       s.Value,
			Instruction: s.Description,
			Status:      "planned",
		})
		plan.Objectives = append(plan.Objectives, Objective{
			Type:        s.Action,
			Target:      s.Target,
			Description: s.Description,
		})
	}
	return plan
}

// parseSteps decodes the model output, salvaging a bracketed JSON array
// embedded in prose before giving up on a single instruction step.
func parseSteps(raw, userRequest string) []rawStep {
	var steps []rawStep
	if err := json.Unmarshal([]byte(raw), &steps); err == nil && len(steps) > 0 {
		return steps
	}

	if m := jsonArrayPattern.FindString(raw); m != "" {
		if err := json.Unmarshal([]byte(m), &steps); err == nil && len(steps) > 0 {
			return steps
		}
	}

	logger.Info("Planner output was not a JSON step array, falling back to instruction step")
	return []rawStep{{
		Step:        1,
		Action:      "INSTRUCTION",
		Target:      "page",
		Value:       "",
		Description: userRequest,
	}}
}

func (p *Planner) failedPlan(plan *Plan, err error) *Plan {
	logger.Error("Planning failed", zap.Error(err))
	plan.Status = "error"
	plan.Error = err.Error()
	plan.Steps = []Step{{
		ID:          1,
		Action:      "INSTRUCTION",
		Target:      "page",
		Instruction: plan.UserRequest,
		Status:      "planned",
	}}
	plan.Objectives = []Objective{{
		Type:        "INSTRUCTION",
		Target:      "page",
		Description: plan.UserRequest,
	}}
	return plan
}

// PlanTask asks the model for a free-form task description. Parse
// failures fall back to the raw user request.
func (p *Planner) PlanTask(ctx context.Context, userRequest string) *TaskPlan {
	plan := &TaskPlan{
		RequestID:       p.requestID(),
		Timestamp:       p.now().Format(time.RFC3339),
		Model:           p.client.GetModel(),
		UserRequest:     userRequest,
		TaskDescription: userRequest,
		ExecutionType:   "browser_use",
		Status:          "planned",
	}

	systemPrompt, err := prompts.RenderBrowserTaskPrompt()
	if err != nil {
		plan.Status = "error"
		plan.Error = err.Error()
		return plan
	}

	var raw strings.Builder
	err = p.client.GenerateInference(ctx,
		[]llm.Message{{Role: "user", Content: userRequest}},
		func(chunk string) error {
			raw.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(1000),
	)
	if err != nil {
		logger.Error("Task planning failed", zap.Error(err))
		plan.Status = "error"
		plan.Error = err.Error()
		return plan
	}

	var parsed struct {
		TaskDescription string `json:"task_description"`
	}
	if jsonErr := json.Unmarshal([]byte(strings.TrimSpace(raw.String())), &parsed); jsonErr == nil && parsed.TaskDescription != "" {
		plan.TaskDescription = parsed.TaskDescription
	}
	return plan
}
