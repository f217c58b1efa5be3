package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator turns a composed prompt into plan text.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("plan generator not configured")

// GenAIGenerator calls the Gemini text endpoint.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

// Generate sends one request and returns the response text verbatim.
func (g *GenAIGenerator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("generate content: empty response")
	}
	return text, nil
}

// unavailable stands in when the endpoint has no key.
type unavailable struct{}

// Unavailable returns a generator that always fails with ErrNotConfigured.
func Unavailable() Generator {
	return unavailable{}
}

func (unavailable) Generate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
