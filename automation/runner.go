// Package automation plans and executes browser tasks, streaming
// progress events to the client.
package automation

import (
	"context"
	"fmt"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/planner"
)

// StepExecutor runs a planned step list in a browser.
type StepExecutor interface {
	Execute(ctx context.Context, url string, steps []planner.Step, reporter ProgressReporter) error
}

// Providers whose tasks are planned as a free-form task description
// first and then expanded into steps.
var agentProviders = map[string]bool{
	"groq":   true,
	"gemini": true,
}

// Runner owns the plan-then-execute pipeline. Only one task runs at a
// time; concurrent requests are rejected.
type Runner struct {
	planner  *planner.Planner
	executor StepExecutor
	provider string

	// plannerFor builds a planner for a per-task provider override.
	plannerFor func(provider string) (*planner.Planner, error)

	mu      sync.Mutex
	running bool
}

// NewRunner builds a runner around the default planner. provider names
// the provider behind it and selects the planning style.
func NewRunner(p *planner.Planner, executor StepExecutor, provider string) *Runner {
	return &Runner{planner: p, executor: executor, provider: provider}
}

// UseProviderFactory lets tasks request a different planning provider.
// Without a factory every task plans with the default provider.
func (r *Runner) UseProviderFactory(f func(provider string) (*planner.Planner, error)) {
	r.plannerFor = f
}

// Running reports whether a task is currently executing.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *Runner) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// plannerForTask resolves the planner and provider name for one task.
// Unresolvable overrides fall back to the default with a warning event.
func (r *Runner) plannerForTask(provider string, reporter ProgressReporter) (*planner.Planner, string) {
	if provider == "" || provider == r.provider || r.plannerFor == nil {
		return r.planner, r.provider
	}
	p, err := r.plannerFor(provider)
	if err != nil {
		logger.Error("Provider override failed",
			zap.String("provider", provider), zap.Error(err))
		reporter.Send(NewLogMessage("WARNING",
			fmt.Sprintf("Provider %q unavailable, using %s: %v", provider, r.provider, err)))
		return r.planner, r.provider
	}
	return p, provider
}

// Run plans the request and executes the resulting steps against url,
// streaming every stage through the reporter. provider may override the
// planning provider for this task; empty means the default. The final
// event is always task_completed.
func (r *Runner) Run(ctx context.Context, url, request, provider string, reporter ProgressReporter) error {
	if !r.acquire() {
		reporter.Send(NewError("A task is already running"))
		return fmt.Errorf("a task is already running")
	}
	defer r.release()
	defer reporter.Send(NewTaskCompleted())

	p, name := r.plannerForTask(provider, reporter)

	reporter.Send(NewStatus("Planning task..."))
	logger.Info("Automation task started",
		zap.String("url", url), zap.String("request", request),
		zap.String("provider", name))

	// Agent providers plan a task description first and expand it into
	// steps; everything else plans steps directly.
	var plan *planner.Plan
	if agentProviders[name] {
		task := p.PlanTask(ctx, request)
		reporter.Send(NewPlanReady(task))
		if task.Status == "error" {
			reporter.Send(NewLogMessage("WARNING",
				fmt.Sprintf("Task planning degraded, expanding the raw request: %s", task.Error)))
		}
		reporter.Send(NewStatus("Expanding task into steps..."))
		plan = p.PlanSteps(ctx, task.TaskDescription)
	} else {
		plan = p.PlanSteps(ctx, request)
		reporter.Send(NewPlanReady(plan))
	}
	if plan.Status == "error" {
		reporter.Send(NewLogMessage("WARNING",
			fmt.Sprintf("Planning degraded, using fallback plan: %s", plan.Error)))
	}

	reporter.Send(NewStatus(fmt.Sprintf("Executing %d steps...", len(plan.Steps))))
	if err := r.executor.Execute(ctx, url, plan.Steps, reporter); err != nil {
		logger.Error("Automation task failed", zap.Error(err))
		reporter.Send(NewTaskError(err.Error()))
		return err
	}

	reporter.Send(NewTaskSuccess("Task completed successfully"))
	logger.Info("Automation task finished", zap.String("request", request))
	return nil
}
