package oracle

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicAnalyzer asks a Claude model for a severity judgment. Like
// the OpenAI variant it trusts the backend's tier label after
// lower-casing it.
type AnthropicAnalyzer struct {
	client anthropic.Client
	model  string
	logger *log.Logger
}

func NewAnthropicAnalyzer(apiKey, model string, logger *log.Logger) *AnthropicAnalyzer {
	if model == "" {
		model = defaultAnthropicModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &AnthropicAnalyzer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

func (a *AnthropicAnalyzer) AnalyzeFeedback(ctx context.Context, title, description string) (Judgment, bool) {
	userPrompt := fmt.Sprintf("Tiêu đề: %s\nNội dung: %s\n\nHãy phân tích mức độ nghiêm trọng của phản ánh/khiếu nại trên.", title, description)

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: openAISystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		a.logger.Printf("oracle anthropic error: %v", err)
		return Judgment{}, false
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		a.logger.Printf("oracle anthropic empty response")
		return Judgment{}, false
	}

	payload, ok := parseJudgmentJSON(responseText)
	if !ok {
		a.logger.Printf("oracle anthropic no judgment in response")
		return Judgment{}, false
	}
	severity := severityFromLabel(payload.Severity)
	if severity == "" {
		a.logger.Printf("oracle anthropic unknown severity %q", payload.Severity)
		return Judgment{}, false
	}

	judgment := Judgment{
		Severity:   severity,
		Confidence: normalizeConfidence(payload.Confidence),
		Reason:     payload.Reason,
	}
	a.logger.Printf("oracle anthropic model=%s severity=%s confidence=%.2f", a.model, judgment.Severity, judgment.Confidence)
	return judgment, true
}
