// Package provider defines the machine-translation contract the
// suggestion orchestrator drives, plus the concrete MockProvider and
// RestProvider implementations.
package provider

import "context"

// Request carries one batch of already anchor-encoded variant texts to
// translate together.
type Request struct {
	Texts        []string
	SourceLocale string
	TargetLocale string
}

// Provider is the machine-translation contract every backend
// implements: translate a batch of independent texts, and report a
// name for logging/diagnostics.
type Provider interface {
	TranslateBatch(ctx context.Context, req Request) ([]string, error)
	Name() string
}

// BlockTranslator is an optional capability: a provider that can
// translate a batch as a single strongly-consistent unit (one request,
// one response covering every variant) rather than independently,
// which improves terminology consistency across a message's variants.
type BlockTranslator interface {
	TranslateAsBlock(ctx context.Context, req Request) ([]string, error)
}
