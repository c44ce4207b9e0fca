package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"inward-backend/application/ports"
	apperrors "inward-backend/pkg/errors"
	"inward-backend/pkg/observability"
)

const defaultTimeout = 90 * time.Second

// GeminiClient implements ports.ModelClient against the Gemini
// generateContent API. Structured output is enforced through the
// response schema in generationConfig; free-text answers cannot occur.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(endpoint, model, apiKey string, tracer *observability.Tracer, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		tracer:     tracer,
		logger:     logger,
	}
}

// WithHTTPClient overrides the underlying HTTP client. Intended for tests.
func (c *GeminiClient) WithHTTPClient(client *http.Client) *GeminiClient {
	c.httpClient = client
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string                 `json:"responseMimeType"`
	ResponseJSONSchema map[string]interface{} `json:"responseJsonSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateStructured issues one generateContent request forced through
// the given schema. Exactly one attempt; rate-limit and quota statuses
// come back as typed errors, everything else as a generic external
// error for the caller to mask.
func (c *GeminiClient) GenerateStructured(ctx context.Context, req ports.StructuredRequest) (json.RawMessage, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: req.Schema,
		},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model request: %w", err)
	}

	var out json.RawMessage
	err = c.tracer.Capture(ctx, "gemini.generateContent", func(ctx context.Context) error {
		var callErr error
		out, callErr = c.generateContent(ctx, payload)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// generateContent performs the HTTP exchange and extracts the single
// structured candidate.
func (c *GeminiClient) generateContent(ctx context.Context, payload []byte) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewNetworkError("model request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read model response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, raw)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("model response carried no structured payload")
	}

	return json.RawMessage(parsed.Candidates[0].Content.Parts[0].Text), nil
}

// statusError maps a non-success HTTP status to the error taxonomy.
// Gemini reports quota exhaustion as 429 with a RESOURCE_EXHAUSTED
// status in the body, so the body is inspected before the status code.
func (c *GeminiClient) statusError(status int, body []byte) error {
	bodyText := string(body)

	c.logger.Warn("model backend returned non-success status",
		zap.Int("status", status),
		zap.String("model", c.model),
	)

	quota := strings.Contains(bodyText, "RESOURCE_EXHAUSTED") || strings.Contains(bodyText, "quota")
	switch {
	case status == http.StatusPaymentRequired || quota:
		return apperrors.NewQuotaError("gemini")
	case status == http.StatusTooManyRequests:
		return apperrors.NewModelRateLimitError("gemini")
	default:
		return apperrors.NewExternalError("gemini", fmt.Errorf("status %d: %s", status, truncateBody(bodyText)))
	}
}

func truncateBody(s string) string {
	const max = 300
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
