package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface using the Google Gemini SDK
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: config.httpClient(),
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete sends the input with the instruction as the system instruction
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctxWithTimeout, cancel := p.config.withTimeout(ctx)
	defer cancel()

	temperature := float32(p.config.Temperature)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(p.config.MaxTokens),
	}
	if p.config.TopP > 0 {
		topP := float32(p.config.TopP)
		genConfig.TopP = &topP
	}
	if p.config.FrequencyPenalty != 0 {
		fp := float32(p.config.FrequencyPenalty)
		genConfig.FrequencyPenalty = &fp
	}
	if p.config.PresencePenalty != 0 {
		pp := float32(p.config.PresencePenalty)
		genConfig.PresencePenalty = &pp
	}
	if req.System != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctxWithTimeout, p.config.Model, genai.Text(req.Input), genConfig)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	if len(result.Candidates) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no candidates in Gemini response")}
	}

	resp := &CompletionResponse{
		Text:  result.Text(),
		Model: p.config.Model,
	}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if result.UsageMetadata != nil {
		resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}

	return resp, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return mapStatus("Gemini", apiErr.Code, err)
	}
	var apiErrValue genai.APIError
	if errors.As(err, &apiErrValue) {
		return mapStatus("Gemini", apiErrValue.Code, err)
	}
	return mapTransport(err)
}
