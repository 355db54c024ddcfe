package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// OpenAIClient asks an OpenAI model for structured advice and renders it as
// markdown
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// NewOpenAIClient creates an OpenAI responses client. Retries are left to
// ResilientNarrator.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration, logger *slog.Logger) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	client := openai.NewClient(opts...)
	model = strings.TrimPrefix(model, "openai/")
	return &OpenAIClient{
		client: &client,
		model:  model,
		log:    logger.With(slog.String("component", "openai"), slog.String("model", model)),
	}
}

// GenerateExplanation requests advice in the StructuredAdvice shape
func (c *OpenAIClient) GenerateExplanation(ctx context.Context, prompt string) (string, error) {
	schema, err := AdviceSchema()
	if err != nil {
		return "", err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "purchasing_advice",
					Strict:      param.NewOpt(true),
					Schema:      schema,
					Description: param.NewOpt("Purchasing and production planning advice"),
				},
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}

	advice, err := ParseStructuredAdvice(content)
	if err != nil {
		return "", err
	}
	c.log.Debug("structured advice received", slog.String("priority", advice.Priority), slog.Int("actions", len(advice.Actions)))
	return RenderStructuredAdvice(*advice), nil
}

// AdviceSchema reflects StructuredAdvice into a JSON schema map
func AdviceSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(entities.StructuredAdvice{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

// ParseStructuredAdvice decodes and checks a model answer
func ParseStructuredAdvice(content string) (*entities.StructuredAdvice, error) {
	var advice entities.StructuredAdvice
	if err := json.Unmarshal([]byte(content), &advice); err != nil {
		return nil, fmt.Errorf("failed to parse advice: %w", err)
	}

	switch advice.Priority {
	case "high", "medium", "low":
	default:
		return nil, fmt.Errorf("advice has invalid priority %q", advice.Priority)
	}
	if strings.TrimSpace(advice.Assessment) == "" {
		return nil, fmt.Errorf("advice has empty assessment")
	}
	return &advice, nil
}

// RenderStructuredAdvice formats advice as markdown
func RenderStructuredAdvice(a entities.StructuredAdvice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Priority:** %s\n\n", a.Priority)
	b.WriteString(a.Assessment)
	b.WriteString("\n")

	if len(a.Actions) > 0 {
		b.WriteString("\n### Actions\n")
		for i, action := range a.Actions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, action)
		}
	}
	if len(a.Risks) > 0 {
		b.WriteString("\n### Risks\n")
		for _, risk := range a.Risks {
			fmt.Fprintf(&b, "- %s\n", risk)
		}
	}
	return b.String()
}
