package provider

import (
	"context"
	"errors"
	"strings"
)

// MockMode selects how MockProvider fabricates a translation for each
// input text, so pipeline tests can exercise reassembly against known,
// deterministic output instead of a live backend.
type MockMode int

const (
	// ModeIdentity returns each text unchanged.
	ModeIdentity MockMode = iota
	// ModeSuffix appends "_<targetLocale>" to each text.
	ModeSuffix
	// ModeMapping looks up each text in a caller-supplied table,
	// falling back to ModeSuffix behavior for anything not found.
	ModeMapping
	// ModeReorder reverses the whitespace-separated words of each
	// text, simulating a provider that reorders word order.
	ModeReorder
	// ModeError always fails, simulating a provider outage.
	ModeError
)

// MockProvider is a deterministic stand-in for a live MT backend.
type MockProvider struct {
	Mode MockMode
	// Mappings is consulted only in ModeMapping, keyed by source text.
	Mappings map[string]string
	// ErrMessage is returned (wrapped) by ModeError; a generic message
	// is used if empty.
	ErrMessage string

	CallCount   int
	LastRequest *Request
}

// NewMockProvider builds a MockProvider in the given mode.
func NewMockProvider(mode MockMode) *MockProvider {
	return &MockProvider{Mode: mode}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) TranslateBatch(ctx context.Context, req Request) ([]string, error) {
	m.CallCount++
	m.LastRequest = &req

	if m.Mode == ModeError {
		msg := m.ErrMessage
		if msg == "" {
			msg = "mock provider configured to fail"
		}
		return nil, errors.New(msg)
	}

	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = m.translateOne(text, req.TargetLocale)
	}
	return out, nil
}

func (m *MockProvider) translateOne(text, targetLocale string) string {
	switch m.Mode {
	case ModeIdentity:
		return text
	case ModeMapping:
		if translation, ok := m.Mappings[text]; ok {
			return translation
		}
		return text + "_" + targetLocale
	case ModeReorder:
		words := strings.Fields(text)
		for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
			words[i], words[j] = words[j], words[i]
		}
		return strings.Join(words, " ")
	case ModeSuffix:
		fallthrough
	default:
		return text + "_" + targetLocale
	}
}

// Reset clears call tracking, useful between subtests sharing one provider.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
}

var _ Provider = (*MockProvider)(nil)
