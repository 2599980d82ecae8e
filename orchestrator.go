package mwmt

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/mwmt/ast"
	"github.com/ZaguanLabs/mwmt/expansion"
	"github.com/ZaguanLabs/mwmt/locale"
	"github.com/ZaguanLabs/mwmt/provider"
	"github.com/ZaguanLabs/mwmt/reassembly"
	"github.com/ZaguanLabs/mwmt/recovery"
	"github.com/ZaguanLabs/mwmt/wikitext"
)

// Suggestion is the outcome of one Orchestrator.Suggest call: the
// reconstructed wikitext, its confidence, any warnings raised along
// the way, and the variant counts that went into and came out of the
// provider call.
type Suggestion struct {
	Wikitext    string
	Confidence  float64
	Warnings    []string
	VariantsIn  int
	VariantsOut int
}

// Orchestrator drives a single message through parse, expand,
// translate, reassemble, and recover.
type Orchestrator struct {
	logger            zerolog.Logger
	useBlockTranslate bool
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger attaches a zerolog.Logger the orchestrator writes events
// to, instead of a no-op logger.
func WithLogger(logger zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithBlockTranslation prefers a provider's optional TranslateAsBlock
// capability over TranslateBatch when the provider supports it, for
// stronger cross-variant terminology consistency.
func WithBlockTranslation(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) { o.useBlockTranslate = enabled }
}

// NewOrchestrator builds an Orchestrator with the given options.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Suggest parses text, expands it into variants for targetLocale,
// translates them through p, reassembles the translated variants back
// into wikitext, and recovers placeholders. key identifies the
// message for logging only.
func (o *Orchestrator) Suggest(ctx context.Context, sourceLocale, targetLocale, key, text string, p provider.Provider) (*Suggestion, error) {
	canonSource, err := locale.Canonicalize(sourceLocale)
	if err != nil {
		return nil, &InvalidLocaleError{Locale: sourceLocale, Cause: err}
	}
	canonTarget, err := locale.Canonicalize(targetLocale)
	if err != nil {
		return nil, &InvalidLocaleError{Locale: targetLocale, Cause: err}
	}
	sourceLocale, targetLocale = canonSource, canonTarget

	nodes, err := wikitext.Parse(text)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("message %q", key), Cause: err}
	}

	plan, err := expansion.Expand(nodes, targetLocale)
	if err != nil {
		var boundErr *expansion.BoundError
		if errors.As(err, &boundErr) {
			return nil, &ExpansionBoundError{Count: boundErr.Count, Limit: expansion.MaxVariants}
		}
		return nil, &TranslationError{Message: "expansion failed", Cause: err}
	}

	o.logger.Debug().Str("key", key).Int("variants", len(plan.Variants)).Msg("expanded message")

	texts := make([]string, len(plan.Variants))
	for i, v := range plan.Variants {
		texts[i] = v.SourceText
	}

	req := provider.Request{Texts: texts, SourceLocale: sourceLocale, TargetLocale: targetLocale}

	translated, err := o.translate(ctx, p, req)
	if err != nil {
		return nil, classifyTranslateErr(ctx, err)
	}

	if len(translated) != len(texts) {
		return nil, &CountMismatchError{Expected: len(texts), Got: len(translated)}
	}

	result, err := reassembly.Reassemble(plan, translated)
	if err != nil {
		var cf *reassembly.ConsistencyFailure
		if errors.As(err, &cf) {
			return nil, &ConsistencyError{AxisID: cf.AxisID, Similarity: cf.Similarity}
		}
		return nil, &ReassemblyError{Message: "reassembly failed", Cause: err}
	}

	expected := ast.PlaceholderIndices(nodes)
	recovered := recovery.Recover(result.Wikitext, expected)

	warnings := append([]string{}, result.Warnings...)
	warnings = append(warnings, recovered.Warnings...)

	for _, w := range warnings {
		o.logger.Warn().Str("key", key).Msg(w)
	}
	o.logger.Info().
		Str("key", key).
		Str("source", sourceLocale).
		Str("target", targetLocale).
		Int("variants", len(plan.Variants)).
		Float64("confidence", result.Confidence).
		Msg("suggestion ready")

	return &Suggestion{
		Wikitext:    recovered.Wikitext,
		Confidence:  result.Confidence,
		Warnings:    warnings,
		VariantsIn:  len(plan.Variants),
		VariantsOut: len(translated),
	}, nil
}

func (o *Orchestrator) translate(ctx context.Context, p provider.Provider, req provider.Request) ([]string, error) {
	if o.useBlockTranslate {
		if bt, ok := p.(provider.BlockTranslator); ok {
			return bt.TranslateAsBlock(ctx, req)
		}
	}
	return p.TranslateBatch(ctx, req)
}

// classifyTranslateErr maps a provider-layer failure onto this
// package's error taxonomy, preferring the context's own state
// (Cancelled/Timeout) over whatever the provider itself reported.
func classifyTranslateErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &CancelledError{Cause: err}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Cause: err}
	}

	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case provider.KindConfig:
			return &ConfigError{Message: pe.Message, Cause: pe}
		case provider.KindNetwork:
			return &NetworkError{Message: pe.Message, Cause: pe}
		case provider.KindInvalidLocale:
			return &InvalidLocaleError{Cause: pe}
		default:
			return &TranslationError{Message: pe.Message, Cause: pe}
		}
	}
	return &TranslationError{Message: "provider call failed", Cause: err}
}
