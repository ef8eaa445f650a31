package service

import (
	"context"
	"fmt"
	"strings"

	"pdf-extract-api/internal/domain"

	"cloud.google.com/go/vertexai/genai"
)

// VertexInferenceClient implements domain.InferenceClient against the
// Vertex AI Gemini API. Safety filters are configured permissively: the
// prompts carry financial and form documents, not adversarial content, and
// a blocked response would look identical to an empty extraction.
type VertexInferenceClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexInferenceClient creates a new client for the given project,
// region and model.
func NewVertexInferenceClient(ctx context.Context, projectID, location, modelName string) (*VertexInferenceClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location cannot be empty")
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexInferenceClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate sends one prompt plus a binary attachment and returns the raw
// model text. The response carries no structured-output guarantee.
func (c *VertexInferenceClient) Generate(ctx context.Context, prompt string, attachment domain.Attachment) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	filePart := genai.Blob{
		MIMEType: attachment.MIMEType,
		Data:     attachment.Data,
	}
	resp, err := model.GenerateContent(ctx, filePart, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

// Close releases the underlying API client.
func (c *VertexInferenceClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
