package prompts

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

func render(name string, data any) (string, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChatSystemPrompt renders the chat system prompt. fileContext, when
// non-empty, lists the files the user has shared in this session.
func RenderChatSystemPrompt(fileContext string) (string, error) {
	return render("chat_system.md", struct {
		FileContext string
	}{FileContext: fileContext})
}

// RenderAnalysisPrompt renders the system and user prompts for a document
// analysis run. originalLength is the pre-truncation character count.
func RenderAnalysisPrompt(filename, docTypeHint, content string, originalLength int, truncated bool) (systemPrompt, userPrompt string, err error) {
	systemPrompt, err = render("analysis_system.md", nil)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = render("analysis_user.md", struct {
		Filename       string
		DocTypeHint    string
		Content        string
		OriginalLength int
		Truncated      bool
	}{
		Filename:       filename,
		DocTypeHint:    docTypeHint,
		Content:        content,
		OriginalLength: originalLength,
		Truncated:      truncated,
	})
	if err != nil {
		return "", "", err
	}
	return systemPrompt, userPrompt, nil
}

// RenderStepPlannerPrompt returns the system prompt that asks the model
// for a JSON array of browser steps.
func RenderStepPlannerPrompt() (string, error) {
	return render("step_planner_system.md", nil)
}

// RenderBrowserTaskPrompt returns the system prompt that asks the model
// for a free-form task description for agent-driven automation.
func RenderBrowserTaskPrompt() (string, error) {
	return render("browser_task_system.md", nil)
}
