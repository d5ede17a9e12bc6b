package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"scriptchat/internal/domain"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a Generator backed by the hosted Gemini API.
// The key comes from configuration, never from source.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete implements domain.Generator. Every turn carries the full
// payload the assembler built; no request state is kept between calls.
func (g *GeminiClient) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	var contents []*genai.Content
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == domain.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &domain.HTTPError{Status: apiErr.Code, Body: apiErr.Message}
		}
		return "", &domain.HTTPError{Body: err.Error()}
	}

	// first candidate's first text part; anything else is a content error
	text := res.Text()
	if text == "" {
		return "", &domain.ContentError{Reason: "no candidates with text parts"}
	}
	return text, nil
}
