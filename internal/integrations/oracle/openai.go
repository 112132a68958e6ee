package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"triagebot/internal/httpx"
)

const defaultOpenAIModel = "gpt-4o-mini"
const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

const openAISystemPrompt = `Bạn là một chuyên gia phân tích phản ánh, khiếu nại của người dân.
Nhiệm vụ của bạn là phân tích mức độ nghiêm trọng của vấn đề dựa trên các tiêu chí:

1. Mức độ nghiêm trọng (severity):
- HIGH: Ảnh hưởng đến tính mạng, sức khỏe; vi phạm pháp luật nghiêm trọng; tham nhũng;
        ô nhiễm nghiêm trọng; ảnh hưởng đến nhiều người; cần giải quyết khẩn cấp
- MEDIUM: Cơ sở hạ tầng hư hỏng; vệ sinh môi trường; trật tự đô thị;
          dịch vụ công chậm trễ; tiện ích gián đoạn
- LOW: Vấn đề nhỏ, cá nhân, không gấp

2. Lý do phân loại: Giải thích ngắn gọn lý do phân loại mức độ nghiêm trọng

Trả về kết quả theo định dạng JSON:
{
    "severity": "HIGH/MEDIUM/LOW",
    "confidence": 0.7-0.95,
    "reason": "Lý do phân loại..."
}`

// OpenAIAnalyzer asks an OpenAI chat model for a severity judgment.
// This variant trusts the backend's tier label (lower-cased) and only
// normalizes the confidence scale.
type OpenAIAnalyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *log.Logger
}

func NewOpenAIAnalyzer(apiKey, model string, logger *log.Logger) *OpenAIAnalyzer {
	if model == "" {
		model = defaultOpenAIModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OpenAIAnalyzer{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultOpenAIEndpoint,
		client:   httpx.ExternalHTTPClient(),
		logger:   logger,
	}
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *OpenAIAnalyzer) AnalyzeFeedback(ctx context.Context, title, description string) (Judgment, bool) {
	if a.apiKey == "" {
		return Judgment{}, false
	}

	userPrompt := fmt.Sprintf("Tiêu đề: %s\nNội dung: %s\n\nHãy phân tích mức độ nghiêm trọng của phản ánh/khiếu nại trên.", title, description)

	reqBody := openAIRequest{
		Model: a.model,
		Messages: []openAIMessage{
			{Role: "system", Content: openAISystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		a.logger.Printf("oracle openai marshal error: %v", err)
		return Judgment{}, false
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		a.logger.Printf("oracle openai request error: %v", err)
		return Judgment{}, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Printf("oracle openai error: %v", err)
		return Judgment{}, false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logger.Printf("oracle openai read error: %v", err)
		return Judgment{}, false
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		a.logger.Printf("oracle openai parse error: %v", err)
		return Judgment{}, false
	}
	if parsed.Error != nil {
		a.logger.Printf("oracle openai api error: %s", parsed.Error.Message)
		return Judgment{}, false
	}
	if len(parsed.Choices) == 0 {
		a.logger.Printf("oracle openai empty response")
		return Judgment{}, false
	}

	payload, ok := parseJudgmentJSON(parsed.Choices[0].Message.Content)
	if !ok {
		a.logger.Printf("oracle openai no judgment in response")
		return Judgment{}, false
	}
	severity := severityFromLabel(payload.Severity)
	if severity == "" {
		a.logger.Printf("oracle openai unknown severity %q", payload.Severity)
		return Judgment{}, false
	}

	judgment := Judgment{
		Severity:   severity,
		Confidence: normalizeConfidence(payload.Confidence),
		Reason:     payload.Reason,
	}
	a.logger.Printf("oracle openai model=%s severity=%s confidence=%.2f", a.model, judgment.Severity, judgment.Confidence)
	return judgment, true
}
