// Package ast defines the immutable message tree consumed by the MT
// pipeline. Trees are produced by an external wikitext parser (the
// wikitext package in this module stands in for it) and are never
// mutated by anything downstream.
package ast

import "fmt"

// Node is one element of a parsed message. The concrete types are
// Text, Placeholder, InternalLink, ExternalLink, Plural, and Gender.
type Node interface {
	isNode()
}

// Nodes is an ordered sequence of Node, i.e. a whole message or a
// magic-word form body. Structurally shared: once built, a Nodes
// value and everything it points to is never modified in place.
type Nodes []Node

// Text is literal text carried through untranslated structure.
type Text string

func (Text) isNode() {}

// Placeholder is a numbered substitution site, 1-indexed ($1, $2, ...).
type Placeholder struct {
	Index uint
}

func (Placeholder) isNode() {}

// InternalLink is a `[[Target]]` or `[[Target|Display]]` wiki link.
type InternalLink struct {
	Target  string
	Display *string
}

func (InternalLink) isNode() {}

// ExternalLink is a `[http://example.com]` or `[http://example.com Display]` link.
type ExternalLink struct {
	URL     string
	Display *string
}

func (ExternalLink) isNode() {}

// Selector is either a placeholder reference (Index > 0) or a literal
// numeric/string value resolved at parse time (Literal != nil).
type Selector struct {
	// Index is the placeholder number this selector reads, or 0 if
	// the selector is a direct literal.
	Index uint
	// Literal holds the resolved literal selector text when Index == 0,
	// e.g. "5" in {{PLURAL:5|...}} or "male" in {{GENDER:male|...}}.
	Literal string
}

// IsAxis reports whether this selector binds a shared axis (true) or
// resolves to one fixed form at parse time (false).
func (s Selector) IsAxis() bool { return s.Index > 0 }

// Plural is a `{{PLURAL:selector|form1|form2|...}}` magic word.
type Plural struct {
	Selector Selector
	Forms    []Nodes
}

func (Plural) isNode() {}

// Gender is a `{{GENDER:selector|male|female|neutral}}` magic word.
type Gender struct {
	Selector Selector
	Forms    []Nodes
}

func (Gender) isNode() {}

// Walk visits every node in the tree depth-first, including nodes
// nested inside Plural/Gender forms. visit returning false stops
// descent into that node's children (it still continues with
// siblings).
func Walk(nodes Nodes, visit func(Node) bool) {
	for _, n := range nodes {
		descend := visit(n)
		if !descend {
			continue
		}
		switch v := n.(type) {
		case Plural:
			for _, f := range v.Forms {
				Walk(f, visit)
			}
		case Gender:
			for _, f := range v.Forms {
				Walk(f, visit)
			}
		}
	}
}

// MaxPlaceholder returns the highest placeholder index referenced
// anywhere in the tree (as a Placeholder node or as an axis
// Selector), or 0 if none is present.
func MaxPlaceholder(nodes Nodes) uint {
	var max uint
	Walk(nodes, func(n Node) bool {
		switch v := n.(type) {
		case Placeholder:
			if v.Index > max {
				max = v.Index
			}
		case Plural:
			if v.Selector.IsAxis() && v.Selector.Index > max {
				max = v.Selector.Index
			}
		case Gender:
			if v.Selector.IsAxis() && v.Selector.Index > max {
				max = v.Selector.Index
			}
		}
		return true
	})
	return max
}

// PlaceholderIndices returns the distinct indices of every Placeholder
// node reachable in the tree (selector-only references are excluded),
// the set of indices Recovery expects to find restored somewhere in a
// reassembled message.
func PlaceholderIndices(nodes Nodes) []uint {
	seen := make(map[uint]bool)
	var out []uint
	Walk(nodes, func(n Node) bool {
		if p, ok := n.(Placeholder); ok && !seen[p.Index] {
			seen[p.Index] = true
			out = append(out, p.Index)
		}
		return true
	})
	return out
}

// String renders a debug form of a selector, used in error messages.
func (s Selector) String() string {
	if s.IsAxis() {
		return fmt.Sprintf("$%d", s.Index)
	}
	return s.Literal
}
