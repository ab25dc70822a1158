package intent

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
	defaultHTTPTimeout = 30 * time.Second
)

const classifyPrompt = `Clasifica la intención del usuario en una de las siguientes categorías: GREETING, ANALYSIS_REQUEST, FEEDBACK_POSITIVE, FEEDBACK_NEGATIVE, HELP_REQUEST, UNKNOWN.
- GREETING: Saludos como "hola", "buenos días", "qué tal".
- ANALYSIS_REQUEST: Cualquier texto, enlace o audio que el usuario envíe para ser analizado. Es la intención por defecto si no encaja en otra.
- FEEDBACK_POSITIVE: Respuestas afirmativas a la pregunta de si el análisis fue útil, como "sí", "me sirvió", "gracias".
- FEEDBACK_NEGATIVE: Respuestas negativas como "no", "no me sirvió".
- HELP_REQUEST: Peticiones de ayuda como "¿qué haces?", "ayuda", "info".
- UNKNOWN: No se entiende la petición.

Mensaje del usuario: %q

Responde únicamente con el objeto JSON en el formato:
{ "intent": "CATEGORIA" }`

// Classifier labels message text with an OpenAI chat completion in JSON mode.
type Classifier struct {
	client openaigo.Client
	model  string
}

type ClassifierConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("intent classifier: api key is required")
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
	return &Classifier{
		client: openaigo.NewClient(opts...),
		model:  model,
	}, nil
}

// Classify returns one of the closed intent values. An unrecognized label is
// reported as Unknown, never as an error.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(fmt.Sprintf(classifyPrompt, text)),
		},
		ResponseFormat: openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return Unknown, fmt.Errorf("intent classify: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Unknown, fmt.Errorf("intent classify: empty choices")
	}

	var out struct {
		Intent string `json:"intent"`
	}
	if err := jsonutil.DecodeWithFallback(resp.Choices[0].Message.Content, &out); err != nil {
		return Unknown, fmt.Errorf("intent classify: invalid json: %w", err)
	}
	return Parse(out.Intent), nil
}
