// Package llm provides the generation capability behind the component
// pipeline: a thin client over Google Gemini with streaming token
// forwarding to an explicit per-call observer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Request carries everything one generation call needs.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// Observer receives streamed text chunks as they arrive. It must not block;
// orchestration only acts on the fully assembled text. A nil observer is
// valid and means no streaming consumer.
type Observer func(chunk string)

// Client is an abstraction over LLM providers
type Client interface {
	// Generate streams a completion for the request, forwarding chunks to
	// the observer, and returns the fully assembled text.
	Generate(ctx context.Context, req Request, observe Observer) (string, error)
	// GenerateJSON generates content expected to be JSON and strips any
	// markdown fences the model wrapped it in.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client for a single model.
func NewGeminiClient(ctx context.Context, model, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Generate streams a completion and returns the assembled text. Any
// transport or mid-stream error yields ("", error); callers treat that as
// empty output and fall back.
func (c *GeminiClient) Generate(ctx context.Context, req Request, observe Observer) (string, error) {
	model := c.client.GenerativeModel(c.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}

	it := model.GenerateContentStream(ctx, genai.Text(req.Prompt))

	var sb strings.Builder
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("generation stream failed: %w", err)
		}
		chunk := textFromResponse(resp)
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)
		if observe != nil {
			observe(chunk)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in generation response")
	}
	return sb.String(), nil
}

// GenerateJSON generates JSON content with a low temperature and cleans
// markdown fences from the result.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := textFromResponse(resp)
	if text == "" {
		return "", fmt.Errorf("no text in generation response")
	}
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// textFromResponse flattens the text parts of a Gemini response; empty when
// the response has no usable candidate.
func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}
