package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	MaxRetries   int
	Cost         CostPicker
	Fallback     domain.Generator
	OnFallback   func(reason string, err error)
	OnWarning    func(reason, detail string)
}

// OpenAIGenerator asks a chat completion model for the prompt. Any failure
// is handed to the fallback generator when one is configured.
type OpenAIGenerator struct {
	client     openai.Client
	model      string
	pick       CostPicker
	fallback   domain.Generator
	onFallback func(reason string, err error)
}

const openAIDefaultTimeout = 45 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-3.5-turbo": "gpt-3.5-turbo",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
}

var openAIModelAliases = map[string]string{
	"gpt-3.5":                "gpt-3.5-turbo",
	"gpt3.5":                 "gpt-3.5-turbo",
	"gpt-3-5":                "gpt-3.5-turbo",
	"gpt-35-turbo":           "gpt-3.5-turbo",
	"gpt35-turbo":            "gpt-3.5-turbo",
	"gpt4o":                  "gpt-4o",
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt-4o-mini-2024-05-13": "gpt-4o-mini",
}

func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	modelInput := strings.TrimSpace(opts.Model)
	normalizedModel, normalizationReason := normalizeOpenAIModel(modelInput)
	if normalizationReason != "" && opts.OnWarning != nil {
		detail := fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), normalizedModel)
		opts.OnWarning("model_"+normalizationReason, detail)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: openAIDefaultTimeout}
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(max(opts.MaxRetries, 0)),
	}
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base+"/"))
	}
	if org := strings.TrimSpace(opts.Organization); org != "" {
		reqOpts = append(reqOpts, option.WithOrganization(org))
	}
	return &OpenAIGenerator{
		client:     openai.NewClient(reqOpts...),
		model:      normalizedModel,
		pick:       costPicker(opts.Cost),
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (o *OpenAIGenerator) Model() string { return o.model }

func (o *OpenAIGenerator) Generate(ctx context.Context, tool domain.ToolDescriptor, in domain.GeneratorInput) (*domain.GeneratorOutput, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Temperature: openai.Float(0.6),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(buildModelRequest(tool, in)),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return o.useFallback(ctx, tool, in, fmt.Sprintf("http_%d", apiErr.StatusCode), err)
		}
		return o.useFallback(ctx, tool, in, "request_failed", err)
	}
	if len(resp.Choices) == 0 {
		return o.useFallback(ctx, tool, in, "empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, tool, in, "empty_response", errors.New("empty response"))
	}
	out, err := outputFromModel(text, openAIProviderName, o.pick(tool.Cost))
	if err != nil {
		return o.useFallback(ctx, tool, in, "parse_payload", err)
	}
	return out, nil
}

func (o *OpenAIGenerator) useFallback(ctx context.Context, tool domain.ToolDescriptor, in domain.GeneratorInput, reason string, cause error) (*domain.GeneratorOutput, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	if o.fallback == nil || ctx.Err() != nil {
		return nil, fmt.Errorf("openai %s: %w", reason, cause)
	}
	return o.fallback.Generate(ctx, tool, in)
}

var _ domain.Generator = (*OpenAIGenerator)(nil)

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		if canonical, ok := openAIModelCanonical[alias]; ok {
			return canonical, "alias"
		}
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}
