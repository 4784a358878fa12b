package prompts

import (
	"strings"
	"testing"
)

func TestRenderChatSystemPrompt(t *testing.T) {
	prompt, err := RenderChatSystemPrompt("")
	if err != nil {
		t.Fatalf("Failed to render chat system prompt: %v", err)
	}

	expectedContent := []string{
		"You are Viser AI",
		"TABLE RULES (STRICT)",
		"GitHub-Flavored Markdown table",
		"EVERY row MUST start and end with a pipe",
	}
	for _, expected := range expectedContent {
		if !strings.Contains(prompt, expected) {
			t.Errorf("Chat system prompt should contain '%s'", expected)
		}
	}

	if strings.Contains(prompt, "uploaded files") {
		t.Error("Prompt without file context should not mention uploads")
	}
}

func TestRenderChatSystemPromptWithFiles(t *testing.T) {
	prompt, err := RenderChatSystemPrompt("- report.pdf (analyzed)\n- notes.txt (uploaded)")
	if err != nil {
		t.Fatalf("Failed to render chat system prompt: %v", err)
	}

	expectedContent := []string{
		"User has uploaded files",
		"report.pdf (analyzed)",
		"notes.txt (uploaded)",
		"offer to analyze them",
	}
	for _, expected := range expectedContent {
		if !strings.Contains(prompt, expected) {
			t.Errorf("Chat system prompt should contain '%s'", expected)
		}
	}
}

func TestRenderAnalysisPrompt(t *testing.T) {
	systemPrompt, userPrompt, err := RenderAnalysisPrompt(
		"api_spec.md",
		"This appears to be an API documentation or specification.",
		"GET /users returns the user list.",
		33,
		false,
	)
	if err != nil {
		t.Fatalf("Failed to render analysis prompt: %v", err)
	}

	if !strings.Contains(systemPrompt, "expert document analyst") {
		t.Error("System prompt should identify the analyst role")
	}

	expectedUserContent := []string{
		"api_spec.md",
		"This appears to be an API documentation",
		"GET /users returns the user list.",
		"33 characters (full content)",
		"DOCUMENT OVERVIEW & METADATA",
		"COMPREHENSIVE SUMMARY",
	}
	for _, expected := range expectedUserContent {
		if !strings.Contains(userPrompt, expected) {
			t.Errorf("User prompt should contain '%s'", expected)
		}
	}
}

func TestRenderAnalysisPromptTruncated(t *testing.T) {
	_, userPrompt, err := RenderAnalysisPrompt("big.txt", "", "snipped", 90000, true)
	if err != nil {
		t.Fatalf("Failed to render analysis prompt: %v", err)
	}

	if !strings.Contains(userPrompt, "90000 characters (truncated for analysis)") {
		t.Error("User prompt should flag truncated content")
	}
}

func TestRenderPlannerPrompts(t *testing.T) {
	stepPrompt, err := RenderStepPlannerPrompt()
	if err != nil {
		t.Fatalf("Failed to render step planner prompt: %v", err)
	}
	if !strings.Contains(stepPrompt, "FILL, CLICK, SEARCH, SELECT, NAVIGATE, WAIT") {
		t.Error("Step planner prompt should list the step types")
	}
	if !strings.Contains(stepPrompt, "JSON array of steps") {
		t.Error("Step planner prompt should demand a JSON array")
	}

	taskPrompt, err := RenderBrowserTaskPrompt()
	if err != nil {
		t.Fatalf("Failed to render browser task prompt: %v", err)
	}
	if !strings.Contains(taskPrompt, "task_description") {
		t.Error("Browser task prompt should demand a task_description object")
	}
}
