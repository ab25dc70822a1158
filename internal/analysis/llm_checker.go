package analysis

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/itsGabo22/GuardianDigitalBot/internal/jsonutil"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 60 * time.Second
)

const scamPrompt = `Analiza el siguiente mensaje de un usuario. Determina si es una estafa (scam), si contiene noticias falsas (fake news), o si es información verificable como verdadera.
Responde únicamente con un objeto JSON con el siguiente formato: {"isScam": boolean, "isFakeNews": boolean, "isVerifiedTrue": boolean, "reason": "Una breve explicación en español de por qué lo consideras así."}

Mensaje a analizar: %q`

// LLMChecker detects scams and fake news with an OpenAI chat completion in
// JSON mode.
type LLMChecker struct {
	client openaigo.Client
	model  string
}

type LLMCheckerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewLLMChecker(cfg LLMCheckerConfig) (*LLMChecker, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("analysis llm checker: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: defaultHTTPTimeout}),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	return &LLMChecker{
		client: openaigo.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *LLMChecker) CheckScamAndFakeNews(ctx context.Context, text string) (Outcome, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(fmt.Sprintf(scamPrompt, text)),
		},
		ResponseFormat: openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return Outcome{}, err
	}
	if len(resp.Choices) == 0 {
		return Outcome{}, fmt.Errorf("scam check: empty choices")
	}

	var out Outcome
	if err := jsonutil.DecodeWithFallback(resp.Choices[0].Message.Content, &out); err != nil {
		return Outcome{}, fmt.Errorf("scam check: invalid json: %w", err)
	}
	return out, nil
}
