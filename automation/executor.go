package automation

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/config"
	"github.com/viser-ai/viser-server/planner"
)

// Common selectors for heuristic steps.
const (
	searchFieldSelector = `input[type="search"], input[name*="search"], input[placeholder*="search"]`
	submitSelector      = `button[type="submit"], input[type="submit"]`
)

// Executor drives a real browser through a planned step list. Step
// failures are reported and execution continues with the next step.
type Executor struct {
	cfg config.BrowserConfig
}

func NewExecutor(cfg config.BrowserConfig) *Executor {
	return &Executor{cfg: cfg}
}

// Execute opens url and runs the steps, streaming progress through the
// reporter. A final screenshot is written when the page survives.
func (e *Executor) Execute(ctx context.Context, url string, steps []planner.Step, reporter ProgressReporter) error {
	reporter.Send(NewLogMessage("INFO", fmt.Sprintf("Opening browser to: %s", url)))

	l := launcher.New().Headless(e.cfg.Headless)
	if e.cfg.Bin != "" {
		l = l.Bin(e.cfg.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()
	reporter.Send(NewLogMessage("SUCCESS", "Browser started"))

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.Timeout(e.cfg.NavTimeout).WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	reporter.Send(NewLogMessage("SUCCESS", "Navigation successful"))

	for _, step := range steps {
		reporter.Send(NewLogMessage("INFO",
			fmt.Sprintf("Step %d: %s -> %s", step.ID, step.Action, step.Target)))

		if err := e.runStep(page, step); err != nil {
			logger.Error("Automation step failed",
				zap.Int("step", step.ID), zap.String("action", step.Action), zap.Error(err))
			reporter.Send(NewLogMessage("ERROR",
				fmt.Sprintf("Step %d error: %v", step.ID, err)))
			reporter.Send(NewStepUpdate(step.ID, "failed", step.Action, step.Target, err.Error()))
			continue
		}

		reporter.Send(NewLogMessage("SUCCESS", fmt.Sprintf("Step %d completed", step.ID)))
		reporter.Send(NewStepUpdate(step.ID, "completed", step.Action, step.Target, ""))
		time.Sleep(e.cfg.StepDelay)
	}

	e.saveScreenshot(page, reporter)
	reporter.Send(NewLogMessage("SUCCESS", "All browser actions completed!"))
	return nil
}

func (e *Executor) runStep(page *rod.Page, step planner.Step) error {
	switch step.Action {
	case "SEARCH":
		return e.search(page, step.Value)
	case "CLICK":
		return clickSelector(page, step.Target)
	case "FILL":
		return fillSelector(page, step.Target, step.Value)
	case "SELECT":
		el, err := page.Element(step.Target)
		if err != nil {
			return err
		}
		return el.Select([]string{step.Value}, true, rod.SelectorTypeText)
	case "NAVIGATE":
		// "URL" targets carry the destination in value; anything else is
		// a link to click.
		if step.Target == "URL" {
			if err := page.Navigate(step.Value); err != nil {
				return err
			}
			return page.Timeout(e.cfg.NavTimeout).WaitLoad()
		}
		return clickSelector(page, step.Target)
	case "WAIT":
		seconds := 2
		if n, err := strconv.Atoi(strings.TrimSpace(step.Value)); err == nil && n > 0 {
			seconds = n
		}
		time.Sleep(time.Duration(seconds) * time.Second)
		return nil
	case "VERIFY":
		return verify(page, step.Target, step.Value)
	default:
		return e.runInstruction(page, step)
	}
}

func (e *Executor) search(page *rod.Page, query string) error {
	el, err := page.Element(searchFieldSelector)
	if err != nil {
		return fmt.Errorf("no search field found: %w", err)
	}
	if err := el.Input(query); err != nil {
		return err
	}
	return el.Type(input.Enter)
}

// runInstruction handles free-form INSTRUCTION steps with text
// heuristics, mirroring what a user would do for common phrasings.
func (e *Executor) runInstruction(page *rod.Page, step planner.Step) error {
	instruction := strings.ToLower(step.Instruction)
	switch {
	case strings.Contains(instruction, "login") || strings.Contains(instruction, "sign in"):
		el, err := page.ElementR("button, a", "/login|sign in/i")
		if err != nil {
			return fmt.Errorf("no login control found: %w", err)
		}
		return el.Click(proto.InputMouseButtonLeft, 1)
	case strings.Contains(instruction, "search"):
		query := step.Value
		if query == "" {
			query = step.Target
		}
		return e.search(page, query)
	case strings.Contains(instruction, "submit") || strings.Contains(instruction, "confirm"):
		return clickSelector(page, submitSelector)
	default:
		return fmt.Errorf("unhandled action %q", step.Action)
	}
}

func clickSelector(page *rod.Page, selector string) error {
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func fillSelector(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.Input(value)
}

func verify(page *rod.Page, target, value string) error {
	if target != "" && target != "page" {
		if _, err := page.Timeout(5 * time.Second).Element(target); err == nil {
			return nil
		}
	}
	if value != "" {
		if _, err := page.Timeout(5 * time.Second).ElementR("*", value); err != nil {
			return fmt.Errorf("%q not found on page", value)
		}
		return nil
	}
	if target == "" || target == "page" {
		return nil
	}
	return fmt.Errorf("%q not found on page", target)
}

func (e *Executor) saveScreenshot(page *rod.Page, reporter ProgressReporter) {
	if e.cfg.ScreenshotTo == "" {
		return
	}
	data, err := page.Screenshot(false, nil)
	if err != nil {
		reporter.Send(NewLogMessage("WARNING", fmt.Sprintf("Could not take screenshot: %v", err)))
		return
	}
	if err := os.WriteFile(e.cfg.ScreenshotTo, data, 0o644); err != nil {
		reporter.Send(NewLogMessage("WARNING", fmt.Sprintf("Could not save screenshot: %v", err)))
		return
	}
	reporter.Send(NewLogMessage("SUCCESS", fmt.Sprintf("Screenshot saved: %s", e.cfg.ScreenshotTo)))
}
