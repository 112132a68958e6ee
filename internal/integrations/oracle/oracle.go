// Package oracle integrates the optional external severity analyzers.
// This is the only non-deterministic dependency in the triage pipeline;
// every failure mode (missing credential, network error, malformed
// response) collapses into "no answer" at this boundary so the caller
// can fall through to the rule-based severity scan.
package oracle

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"triagebot/internal/domain"
)

// Judgment is one severity verdict from an external analyzer, already
// normalized onto the low/medium/high scale with confidence in [0,1].
type Judgment struct {
	Severity   string
	Confidence float64
	Reason     string
}

// Analyzer is the narrow interface the classifier sees. The boolean is
// false whenever there is no usable answer; implementations never
// return errors past this boundary.
type Analyzer interface {
	AnalyzeFeedback(ctx context.Context, title, description string) (Judgment, bool)
}

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// judgmentPayload is the JSON shape all provider prompts request.
type judgmentPayload struct {
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// parseJudgmentJSON extracts a judgment payload from raw model output.
// It tries a strict parse of the whole text first, then a bounded
// first-`{`-to-last-`}` scan to tolerate surrounding prose, and gives
// up with false rather than erroring.
func parseJudgmentJSON(raw string) (judgmentPayload, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var payload judgmentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return payload, true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return judgmentPayload{}, false
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return judgmentPayload{}, false
	}
	return payload, true
}

// normalizeConfidence maps backend confidences onto [0,1]. Some
// backends answer on a 0-100 scale.
func normalizeConfidence(c float64) float64 {
	if c > 1 {
		c = c / 100
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// severityFromLabel maps a backend tier token (English or Vietnamese)
// onto the three-level scale. Unknown tokens yield "".
func severityFromLabel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "cao":
		return domain.SeverityHigh
	case "medium", "normal", "binh_thuong", "bình thường", "binh thuong":
		return domain.SeverityMedium
	case "low", "thap", "thấp":
		return domain.SeverityLow
	}
	return ""
}

// severityFromConfidence re-derives the tier from the normalized
// confidence instead of trusting the backend's own label.
func severityFromConfidence(c float64) string {
	switch {
	case c < 0.70:
		return domain.SeverityLow
	case c < 0.90:
		return domain.SeverityMedium
	default:
		return domain.SeverityHigh
	}
}

// NewAnalyzer builds the adapter for the configured provider, or nil
// when no provider or credential is configured. A nil Analyzer is the
// permanent "oracle absent" state for the process lifetime.
func NewAnalyzer(provider, model, openAIKey, geminiKey, anthropicKey string, logger *log.Logger) Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	switch provider {
	case ProviderOpenAI:
		if openAIKey == "" {
			logger.Printf("oracle disabled: openai_api_key not configured")
			return nil
		}
		return NewOpenAIAnalyzer(openAIKey, model, logger)
	case ProviderGemini:
		if geminiKey == "" {
			logger.Printf("oracle disabled: gemini_api_key not configured")
			return nil
		}
		return NewGeminiAnalyzer(geminiKey, model, logger)
	case ProviderAnthropic:
		if anthropicKey == "" {
			logger.Printf("oracle disabled: anthropic_api_key not configured")
			return nil
		}
		return NewAnthropicAnalyzer(anthropicKey, model, logger)
	case "":
		return nil
	}
	logger.Printf("oracle disabled: unknown provider %q", provider)
	return nil
}
