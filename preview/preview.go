// Package preview renders a parsed message into an HTML fragment for
// debugging and CLI display, filling placeholders with caller-supplied
// values and resolving PLURAL/GENDER magic words against one concrete
// rendering rather than a full expansion: PLURAL reads the count from
// the referenced placeholder's value, GENDER reads the gender word
// directly, the way the banana-i18n reference renderer does.
package preview

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ZaguanLabs/mwmt/ast"
	"github.com/ZaguanLabs/mwmt/locale"
)

// Meta pairs a rendered HTML fragment with the display metadata a
// caller needs to embed it correctly: the target locale's
// human-readable name, its base-tag-with-hyphens form for an HTML lang
// attribute, and its writing direction for an HTML dir attribute.
type Meta struct {
	HTML      string
	Language  string
	Lang      string
	Direction string
}

// RenderWithMeta renders nodes the same way Render does, and attaches
// the display metadata a page embedding the fragment needs to set its
// lang/dir attributes correctly for targetLocale.
func RenderWithMeta(nodes ast.Nodes, targetLocale string, values []string) (*Meta, error) {
	out, err := Render(nodes, targetLocale, values)
	if err != nil {
		return nil, err
	}
	return &Meta{
		HTML:      out,
		Language:  locale.GetLanguageName(targetLocale),
		Lang:      locale.ToHTMLLang(targetLocale),
		Direction: locale.GetDirection(targetLocale),
	}, nil
}

// Render fills nodes with values (1-indexed, so values[0] is $1) and
// returns the resulting HTML fragment for targetLocale, with internal
// and external wiki links rendered as anchor tags.
func Render(nodes ast.Nodes, targetLocale string, values []string) (string, error) {
	var b strings.Builder
	renderNodes(&b, nodes, targetLocale, values)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + b.String() + "</body>"))
	if err != nil {
		return "", fmt.Errorf("preview: failed to normalize HTML: %w", err)
	}
	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("preview: failed to serialize HTML: %w", err)
	}
	return out, nil
}

func renderNodes(b *strings.Builder, nodes ast.Nodes, targetLocale string, values []string) {
	for _, n := range nodes {
		renderNode(b, n, targetLocale, values)
	}
}

func renderNode(b *strings.Builder, n ast.Node, targetLocale string, values []string) {
	switch v := n.(type) {
	case ast.Text:
		b.WriteString(html.EscapeString(string(v)))
	case ast.Placeholder:
		b.WriteString(html.EscapeString(valueAt(values, v.Index)))
	case ast.InternalLink:
		display := v.Target
		if v.Display != nil {
			display = *v.Display
		}
		fmt.Fprintf(b, `<a href="%s">%s</a>`, html.EscapeString(v.Target), html.EscapeString(display))
	case ast.ExternalLink:
		display := v.URL
		if v.Display != nil {
			display = *v.Display
		}
		fmt.Fprintf(b, `<a href="%s">%s</a>`, html.EscapeString(v.URL), html.EscapeString(display))
	case ast.Plural:
		form := pluralForm(v.Selector, v.Forms, targetLocale, values)
		renderNodes(b, form, targetLocale, values)
	case ast.Gender:
		form := genderForm(v.Selector, v.Forms, values)
		renderNodes(b, form, targetLocale, values)
	}
}

func valueAt(values []string, index uint) string {
	if index == 0 || int(index) > len(values) {
		return "$" + strconv.FormatUint(uint64(index), 10)
	}
	return values[index-1]
}

func pickForm(forms []ast.Nodes, idx int) ast.Nodes {
	if len(forms) == 0 {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(forms) {
		idx = len(forms) - 1
	}
	return forms[idx]
}

// pluralForm resolves a PLURAL selector's count, either from the
// referenced placeholder's value or a literal, classifies it against
// targetLocale's CLDR-approximate cardinal categories, and picks the
// matching form. forms is padded to targetLocale's category count the
// same way an author-supplied PLURAL clause with too few forms is
// tolerated everywhere else in this pipeline, so an under-supplied
// message still renders rather than indexing out of range.
func pluralForm(sel ast.Selector, forms []ast.Nodes, targetLocale string, values []string) ast.Nodes {
	raw := sel.Literal
	if sel.IsAxis() {
		raw = valueAt(values, sel.Index)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 0
	}
	category := locale.CategoryForInt(targetLocale, n)
	idx := locale.IndexOfCategory(targetLocale, category)
	padded := locale.FormsForCount(targetLocale, forms)
	return pickForm(padded, idx)
}

// genderForm resolves a GENDER selector's word, either from the
// referenced placeholder's value or a literal, into male/female/other.
func genderForm(sel ast.Selector, forms []ast.Nodes, values []string) ast.Nodes {
	word := sel.Literal
	if sel.IsAxis() {
		word = valueAt(values, sel.Index)
	}
	switch word {
	case "male":
		return pickForm(forms, 0)
	case "female":
		return pickForm(forms, 1)
	default:
		return pickForm(forms, 2)
	}
}
