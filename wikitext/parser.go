// Package wikitext implements the MediaWiki-style message parser that
// the MT pipeline (root package mwmt) treats as an external dependency
// per its Non-goals. It turns a flat message string into an ast.Nodes
// tree and back.
package wikitext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/mwmt/ast"
)

// ParseError indicates the input could not be parsed into an AST.
type ParseError struct {
	Message string
	Pos     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wikitext: parse error at %d: %s", e.Pos, e.Message)
}

type parser struct {
	src []rune
	pos int
}

// Parse builds an ast.Nodes tree from raw wikitext. Any construct the
// parser does not recognize as Placeholder/InternalLink/ExternalLink/
// PLURAL/GENDER is passed through as literal Text. An unclosed "{{" or
// "[[" is a *ParseError; an unclosed single "[" stays literal Text.
func Parse(src string) (ast.Nodes, error) {
	p := &parser{src: []rune(src)}
	return p.parseUntil()
}

func (p *parser) parseUntil() (ast.Nodes, error) {
	var out ast.Nodes
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			out = append(out, ast.Text(text.String()))
			text.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch {
		case c == '$' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]):
			flush()
			node, err := p.parsePlaceholder()
			if err != nil {
				return nil, err
			}
			out = append(out, node)

		case c == '{' && p.peek(1) == '{':
			flush()
			node, err := p.parseTransclusion()
			if err != nil {
				return nil, err
			}
			out = append(out, node)

		case c == '[' && p.peek(1) == '[':
			flush()
			node, err := p.parseInternalLink()
			if err != nil {
				return nil, err
			}
			out = append(out, node)

		case c == '[':
			flush()
			node, err := p.parseExternalLink()
			if err != nil {
				return nil, err
			}
			out = append(out, node)

		default:
			text.WriteRune(c)
			p.pos++
		}
	}

	flush()
	return out, nil
}

func (p *parser) peek(offset int) rune {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (p *parser) parsePlaceholder() (ast.Node, error) {
	start := p.pos
	p.pos++ // consume '$'
	digitsStart := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	idx, err := strconv.ParseUint(string(p.src[digitsStart:p.pos]), 10, 64)
	if err != nil {
		return nil, &ParseError{Message: "invalid placeholder index", Pos: start}
	}
	return ast.Placeholder{Index: uint(idx)}, nil
}

// parseTransclusion handles {{PLURAL:...}} and {{GENDER:...}}; any
// other closed {{...}} template is passed through as literal text since
// templates outside PLURAL/GENDER are outside this module's scope.
func (p *parser) parseTransclusion() (ast.Node, error) {
	start := p.pos
	p.pos += 2 // consume "{{"

	body, closed := p.readBalanced("{{", "}}")
	if !closed {
		return nil, &ParseError{Message: "unbalanced template braces", Pos: start}
	}

	parts := splitTop(body, '|')
	if len(parts) == 0 {
		return ast.Text("{{" + body + "}}"), nil
	}

	nameAndSelector := strings.SplitN(parts[0], ":", 2)
	name := strings.ToUpper(strings.TrimSpace(nameAndSelector[0]))
	if (name != "PLURAL" && name != "GENDER") || len(nameAndSelector) != 2 {
		return ast.Text("{{" + body + "}}"), nil
	}

	selectorText := strings.TrimSpace(nameAndSelector[1])
	selector := parseSelector(selectorText)

	forms := make([]ast.Nodes, 0, len(parts)-1)
	for _, raw := range parts[1:] {
		formAst, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		forms = append(forms, formAst)
	}

	if name == "PLURAL" {
		return ast.Plural{Selector: selector, Forms: forms}, nil
	}
	return ast.Gender{Selector: selector, Forms: forms}, nil
}

func parseSelector(text string) ast.Selector {
	if strings.HasPrefix(text, "$") {
		if idx, err := strconv.ParseUint(text[1:], 10, 64); err == nil {
			return ast.Selector{Index: uint(idx)}
		}
	}
	return ast.Selector{Literal: text}
}

func (p *parser) parseInternalLink() (ast.Node, error) {
	start := p.pos
	p.pos += 2 // consume "[["
	body, closed := p.readBalanced("[[", "]]")
	if !closed {
		return nil, &ParseError{Message: "unclosed internal link", Pos: start}
	}

	parts := splitTop(body, '|')
	target := parts[0]
	var display *string
	if len(parts) > 1 {
		d := strings.Join(parts[1:], "|")
		display = &d
	}
	return ast.InternalLink{Target: target, Display: display}, nil
}

func (p *parser) parseExternalLink() (ast.Node, error) {
	start := p.pos
	p.pos++ // consume '['
	var body strings.Builder
	for p.pos < len(p.src) && p.src[p.pos] != ']' {
		body.WriteRune(p.src[p.pos])
		p.pos++
	}
	if p.pos >= len(p.src) {
		return ast.Text(string(p.src[start:])), nil
	}
	p.pos++ // consume ']'

	raw := body.String()
	spaceIdx := strings.IndexAny(raw, " \t")
	if spaceIdx == -1 {
		return ast.ExternalLink{URL: raw}, nil
	}
	url := raw[:spaceIdx]
	display := strings.TrimSpace(raw[spaceIdx+1:])
	return ast.ExternalLink{URL: url, Display: &display}, nil
}

// readBalanced reads up to the matching closing delimiter, respecting
// nested occurrences of open, and returns the contents between them.
func (p *parser) readBalanced(open, close string) (string, bool) {
	depth := 1
	var body strings.Builder
	for p.pos < len(p.src) {
		if matchesAt(p.src, p.pos, close) {
			depth--
			if depth == 0 {
				p.pos += len([]rune(close))
				return body.String(), true
			}
		}
		if matchesAt(p.src, p.pos, open) {
			depth++
		}
		body.WriteRune(p.src[p.pos])
		p.pos++
	}
	return body.String(), false
}

func matchesAt(src []rune, pos int, tok string) bool {
	tr := []rune(tok)
	if pos+len(tr) > len(src) {
		return false
	}
	for i, r := range tr {
		if src[pos+i] != r {
			return false
		}
	}
	return true
}

// splitTop splits on sep, ignoring occurrences nested inside {{...}}
// or [[...]] so that form bodies containing their own magic words or
// links aren't sliced apart.
func splitTop(s string, sep rune) []string {
	var parts []string
	var cur strings.Builder
	depthBrace, depthBracket := 0, 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case matchesAt(runes, i, "{{"):
			depthBrace++
			cur.WriteRune(r)
		case matchesAt(runes, i, "}}"):
			depthBrace--
			cur.WriteRune(r)
		case matchesAt(runes, i, "[["):
			depthBracket++
			cur.WriteRune(r)
		case matchesAt(runes, i, "]]"):
			depthBracket--
			cur.WriteRune(r)
		case r == sep && depthBrace == 0 && depthBracket == 0:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}
