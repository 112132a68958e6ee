package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"triagebot/internal/domain"
)

func openAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		resp := openAIResponse{}
		resp.Choices = []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{{}}
		resp.Choices[0].Message.Content = content
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIAnalyzeFeedback(t *testing.T) {
	srv := openAIServer(t, `{"severity": "HIGH", "confidence": 0.9, "reason": "cháy lan nhanh"}`)
	defer srv.Close()

	a := NewOpenAIAnalyzer("test-key", "", nil)
	a.endpoint = srv.URL
	a.client = srv.Client()

	judgment, ok := a.AnalyzeFeedback(context.Background(), "Cháy nhà", "Cháy lan sang nhà bên cạnh")
	if !ok {
		t.Fatal("expected an answer")
	}
	if judgment.Severity != domain.SeverityHigh {
		t.Fatalf("expected high severity, got %s", judgment.Severity)
	}
	if judgment.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %f", judgment.Confidence)
	}
	if judgment.Reason == "" {
		t.Fatal("expected the reason carried through")
	}
}

func TestOpenAITrustsBackendLabel(t *testing.T) {
	// Label and confidence disagree: this adapter keeps the label.
	srv := openAIServer(t, `{"severity": "LOW", "confidence": 0.95, "reason": "việc nhỏ"}`)
	defer srv.Close()

	a := NewOpenAIAnalyzer("test-key", "", nil)
	a.endpoint = srv.URL
	a.client = srv.Client()

	judgment, ok := a.AnalyzeFeedback(context.Background(), "t", "d")
	if !ok || judgment.Severity != domain.SeverityLow {
		t.Fatalf("expected the backend label kept, got (%+v, %v)", judgment, ok)
	}
}

func TestOpenAIPercentScaleConfidence(t *testing.T) {
	srv := openAIServer(t, `{"severity": "MEDIUM", "confidence": 80, "reason": "hạ tầng"}`)
	defer srv.Close()

	a := NewOpenAIAnalyzer("test-key", "", nil)
	a.endpoint = srv.URL
	a.client = srv.Client()

	judgment, ok := a.AnalyzeFeedback(context.Background(), "t", "d")
	if !ok || judgment.Confidence != 0.8 {
		t.Fatalf("expected confidence rescaled to 0.8, got (%+v, %v)", judgment, ok)
	}
}

func TestOpenAINoAnswerCases(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose only", "Tôi không thể phân tích."},
		{"unknown severity", `{"severity": "critical", "confidence": 0.9, "reason": "x"}`},
	}
	for _, tt := range tests {
		srv := openAIServer(t, tt.content)
		a := NewOpenAIAnalyzer("test-key", "", nil)
		a.endpoint = srv.URL
		a.client = srv.Client()
		if _, ok := a.AnalyzeFeedback(context.Background(), "t", "d"); ok {
			t.Errorf("%s: expected no answer", tt.name)
		}
		srv.Close()
	}
}

func TestOpenAIAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer srv.Close()

	a := NewOpenAIAnalyzer("test-key", "", nil)
	a.endpoint = srv.URL
	a.client = srv.Client()
	if _, ok := a.AnalyzeFeedback(context.Background(), "t", "d"); ok {
		t.Fatal("expected no answer on an api error")
	}
}

func TestOpenAIServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := NewOpenAIAnalyzer("test-key", "", nil)
	a.endpoint = srv.URL
	if _, ok := a.AnalyzeFeedback(context.Background(), "t", "d"); ok {
		t.Fatal("expected no answer when the backend is unreachable")
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	a := &OpenAIAnalyzer{model: defaultOpenAIModel}
	if _, ok := a.AnalyzeFeedback(context.Background(), "t", "d"); ok {
		t.Fatal("expected no answer without an api key")
	}
}
