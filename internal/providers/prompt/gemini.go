package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiOptions struct {
	APIKey     string
	Model      string
	Cost       CostPicker
	Fallback   domain.Generator
	OnFallback func(reason string, err error)
}

// textModel is the part of genai.GenerativeModel the generator relies on.
type textModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	client     *genai.Client
	model      textModel
	modelName  string
	pick       CostPicker
	fallback   domain.Generator
	onFallback func(reason string, err error)
}

func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	name := coalesce(opts.Model, defaultGeminiModel)
	model := client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.6)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))

	g := newGeminiGenerator(model, opts)
	g.client = client
	g.modelName = name
	return g, nil
}

func newGeminiGenerator(model textModel, opts GeminiOptions) *GeminiGenerator {
	return &GeminiGenerator{
		model:      model,
		modelName:  coalesce(opts.Model, defaultGeminiModel),
		pick:       costPicker(opts.Cost),
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

func (g *GeminiGenerator) Model() string { return g.modelName }

func (g *GeminiGenerator) Generate(ctx context.Context, tool domain.ToolDescriptor, in domain.GeneratorInput) (*domain.GeneratorOutput, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildModelRequest(tool, in)))
	if err != nil {
		return g.useFallback(ctx, tool, in, "request_failed", err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return g.useFallback(ctx, tool, in, "empty_response", errors.New("no text candidates"))
	}
	out, err := outputFromModel(text, geminiProviderName, g.pick(tool.Cost))
	if err != nil {
		return g.useFallback(ctx, tool, in, "parse_payload", err)
	}
	return out, nil
}

func (g *GeminiGenerator) useFallback(ctx context.Context, tool domain.ToolDescriptor, in domain.GeneratorInput, reason string, cause error) (*domain.GeneratorOutput, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	if g.fallback == nil || ctx.Err() != nil {
		return nil, fmt.Errorf("gemini %s: %w", reason, cause)
	}
	return g.fallback.Generate(ctx, tool, in)
}

func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

var _ domain.Generator = (*GeminiGenerator)(nil)
