package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrNoResponseText marks a response envelope with no model text in it.
var ErrNoResponseText = errors.New("no response text from AI")

type GeminiService interface {
	// GradeEssayImage posts the grading prompt plus one inline JPEG to the
	// generateContent endpoint and returns the model's raw text output.
	GradeEssayImage(ctx context.Context, apiKey, model, prompt, imageBase64 string) (string, error)
}

type geminiService struct {
	baseURL       string
	requestClient RequestClient
}

func NewGeminiService(baseURL string, requestClient RequestClient) GeminiService {
	return &geminiService{
		baseURL:       baseURL,
		requestClient: requestClient,
	}
}

type generateContentRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// GradeEssayImage implements GeminiService.
func (g *geminiService) GradeEssayImage(ctx context.Context, apiKey, model, prompt, imageBase64 string) (string, error) {
	payload := generateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageBase64}},
			},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(model), url.QueryEscape(apiKey))

	resp, err := g.requestClient.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, model)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var envelope generateContentResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", fmt.Errorf("failed to decode response envelope: %w", err)
	}

	text := envelope.text()
	if text == "" {
		return "", ErrNoResponseText
	}

	return text, nil
}

func (r *generateContentResponse) text() string {
	for _, candidate := range r.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// statusError maps known permanent and exhausted-transient status codes
// to user-facing messages.
func statusError(status int, model string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("model '%s' not found. Check Settings", model)
	case http.StatusBadRequest:
		return errors.New("invalid API Key or bad request")
	case http.StatusForbidden:
		return errors.New("API Key permissions denied")
	case http.StatusServiceUnavailable:
		return errors.New("server is busy (503). Please try again later")
	default:
		return fmt.Errorf("API error: %d", status)
	}
}
