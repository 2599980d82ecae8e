package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
)

// maxBatchEntries and maxBatchChars bound a single request to the
// backend: the batch is chunked along whichever limit is hit first.
const (
	maxBatchEntries = 128
	maxBatchChars   = 30000
)

// ErrorKind classifies a provider failure so the orchestrator can map
// it onto the error taxonomy its callers expect.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindConfig
	KindNetwork
	KindInvalidLocale
	KindRate
)

// ProviderError is returned by RestProvider (and may be returned by
// any Provider) for a failed translation call.
type ProviderError struct {
	Message   string
	Cause     error
	Kind      ErrorKind
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider: %s", e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// RestProvider translates through an OpenAI-compatible chat-completions
// endpoint. Pointing Config.BaseURL at a different vendor's
// OpenAI-compatible gateway lets the same client code serve any such
// backend; GOOGLE_TRANSLATE_API_KEY (read by callers constructing
// Config, not by this type) is the expected credential source.
type RestProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// RestConfig configures a RestProvider.
type RestConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	BaseURL     string
}

// NewRestProvider builds a RestProvider. APIKey must already be
// resolved by the caller (from GOOGLE_TRANSLATE_API_KEY or --key); a
// RestProvider never reads the environment itself.
func NewRestProvider(cfg RestConfig) *RestProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &RestProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
	}
}

func (p *RestProvider) Name() string { return "rest" }

// TranslateBatch chunks req.Texts to respect maxBatchEntries/maxBatchChars
// and issues one chat-completion call per chunk, preserving input order.
func (p *RestProvider) TranslateBatch(ctx context.Context, req Request) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	out := make([]string, 0, len(req.Texts))
	for _, chunk := range chunkTexts(req.Texts) {
		translated, err := p.translateChunk(ctx, chunk, req.TargetLocale)
		if err != nil {
			return nil, err
		}
		out = append(out, translated...)
	}
	return out, nil
}

// TranslateAsBlock satisfies BlockTranslator: a single call covering
// every variant together, for when caller wants stronger cross-variant
// terminology consistency than independent per-chunk calls provide.
func (p *RestProvider) TranslateAsBlock(ctx context.Context, req Request) ([]string, error) {
	return p.translateChunk(ctx, req.Texts, req.TargetLocale)
}

func chunkTexts(texts []string) [][]string {
	var chunks [][]string
	var current []string
	currentChars := 0

	for _, t := range texts {
		tooManyEntries := len(current) >= maxBatchEntries
		tooManyChars := currentChars+len(t) > maxBatchChars && len(current) > 0
		if tooManyEntries || tooManyChars {
			chunks = append(chunks, current)
			current = nil
			currentChars = 0
		}
		current = append(current, t)
		currentChars += len(t)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func (p *RestProvider) translateChunk(ctx context.Context, texts []string, targetLocale string) ([]string, error) {
	systemPrompt := fmt.Sprintf(
		"You are a precise machine translation engine. Translate each input string into %s. "+
			"Never translate or alter numeric tokens that begin with 777 (e.g. 777001); they are "+
			"placeholders and must be copied through verbatim. Return a JSON object "+
			`{"translations": [...]} with exactly one output string per input string, in the same order.`,
		targetLocale,
	)
	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, &ProviderError{Message: "failed to encode request payload", Cause: err, Kind: KindOther}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Message: "empty response from translation backend", Kind: KindNetwork, Retryable: true}
	}

	return parseTranslations(resp.Choices[0].Message.Content, len(texts))
}

func parseTranslations(content string, expected int) ([]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if raw, ok := obj["translations"]; ok {
			var arr []string
			if err := json.Unmarshal(raw, &arr); err == nil {
				return checkCount(arr, expected)
			}
		}
	}

	var arr []string
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return checkCount(arr, expected)
	}

	return nil, &ProviderError{Message: "could not parse translation backend response as JSON", Kind: KindOther}
}

func checkCount(got []string, expected int) ([]string, error) {
	if len(got) != expected {
		return nil, &ProviderError{
			Message: fmt.Sprintf("backend returned %d translations for %d inputs", len(got), expected),
			Kind:    KindOther,
		}
	}
	return got, nil
}

// classifyError inspects a go-openai client error and sorts it into a
// ProviderError with the right Kind, using gjson to pull a nested
// "error.type" field out of whatever raw JSON body the
// client attached without needing a dedicated struct for every
// vendor's error shape.
func classifyError(err error) *ProviderError {
	msg := err.Error()
	lower := strings.ToLower(msg)

	kind := KindNetwork
	retryable := true

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "api key"):
		kind, retryable = KindConfig, false
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		kind, retryable = KindRate, true
	case strings.Contains(lower, "400") || strings.Contains(lower, "invalid_request"):
		kind, retryable = KindConfig, false
	}

	if gjson.Valid(msg) {
		if t := gjson.Get(msg, "error.type"); t.Exists() {
			switch t.String() {
			case "invalid_request_error", "authentication_error":
				kind, retryable = KindConfig, false
			case "rate_limit_error":
				kind, retryable = KindRate, true
			}
		}
	}

	return &ProviderError{Message: "translation backend call failed", Cause: err, Kind: kind, Retryable: retryable}
}

var _ Provider = (*RestProvider)(nil)
var _ BlockTranslator = (*RestProvider)(nil)
