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

const defaultGeminiModel = "gemini-2.5-pro"
const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const geminiSystemPrompt = `Bạn là một chuyên gia phân tích phản ánh, khiếu nại của người dân.
Nhiệm vụ của bạn là phân loại mức độ nghiêm trọng của vấn đề theo 3 mức:
- cao: Ảnh hưởng đến tính mạng, sức khỏe; vi phạm pháp luật nghiêm trọng; tham nhũng; ô nhiễm nghiêm trọng; ảnh hưởng đến nhiều người; cần giải quyết khẩn cấp
- bình thường: Cơ sở hạ tầng hư hỏng; vệ sinh môi trường; trật tự đô thị; dịch vụ công chậm trễ; tiện ích gián đoạn
- thấp: Vấn đề nhỏ, cá nhân, không gấp

Trả về kết quả theo định dạng JSON:
{
    "severity": "cao/binh_thuong/thap",
    "confidence": 0.7-0.95,
    "reason": "Lý do phân loại..."
}`

// GeminiAnalyzer asks a Gemini model for a severity judgment. This
// variant does not trust the backend's tier label: it re-derives the
// tier from the normalized confidence thresholds instead.
type GeminiAnalyzer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

func NewGeminiAnalyzer(apiKey, model string, logger *log.Logger) *GeminiAnalyzer {
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GeminiAnalyzer{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  httpx.ExternalHTTPClient(),
		logger:  logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *GeminiAnalyzer) AnalyzeFeedback(ctx context.Context, title, description string) (Judgment, bool) {
	if a.apiKey == "" {
		return Judgment{}, false
	}

	prompt := fmt.Sprintf("%s\n\nTiêu đề: %s\nNội dung: %s\n\nHãy phân loại mức độ nghiêm trọng của phản ánh/khiếu nại trên.",
		geminiSystemPrompt, title, description)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		a.logger.Printf("oracle gemini marshal error: %v", err)
		return Judgment{}, false
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, a.model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		a.logger.Printf("oracle gemini request error: %v", err)
		return Judgment{}, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Printf("oracle gemini error: %v", err)
		return Judgment{}, false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logger.Printf("oracle gemini read error: %v", err)
		return Judgment{}, false
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		a.logger.Printf("oracle gemini parse error: %v", err)
		return Judgment{}, false
	}
	if parsed.Error != nil {
		a.logger.Printf("oracle gemini api error: %s", parsed.Error.Message)
		return Judgment{}, false
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		a.logger.Printf("oracle gemini empty response")
		return Judgment{}, false
	}

	payload, ok := parseJudgmentJSON(parsed.Candidates[0].Content.Parts[0].Text)
	if !ok {
		a.logger.Printf("oracle gemini no judgment in response")
		return Judgment{}, false
	}

	confidence := normalizeConfidence(payload.Confidence)
	judgment := Judgment{
		Severity:   severityFromConfidence(confidence),
		Confidence: confidence,
		Reason:     payload.Reason,
	}
	a.logger.Printf("oracle gemini model=%s severity=%s confidence=%.2f", a.model, judgment.Severity, judgment.Confidence)
	return judgment, true
}
