package wikitext

import (
	"strconv"
	"strings"

	"github.com/ZaguanLabs/mwmt/ast"
)

// Render serializes an ast.Nodes tree back to wikitext. Render(Parse(s))
// reproduces s for any input Parse accepts without falling back to a
// literal-text passthrough.
func Render(nodes ast.Nodes) string {
	var b strings.Builder
	renderInto(&b, nodes)
	return b.String()
}

func renderInto(b *strings.Builder, nodes ast.Nodes) {
	for _, n := range nodes {
		renderNode(b, n)
	}
}

func renderNode(b *strings.Builder, n ast.Node) {
	switch v := n.(type) {
	case ast.Text:
		b.WriteString(string(v))
	case ast.Placeholder:
		b.WriteString("$")
		b.WriteString(strconv.FormatUint(uint64(v.Index), 10))
	case ast.InternalLink:
		b.WriteString("[[")
		b.WriteString(v.Target)
		if v.Display != nil {
			b.WriteString("|")
			b.WriteString(*v.Display)
		}
		b.WriteString("]]")
	case ast.ExternalLink:
		b.WriteString("[")
		b.WriteString(v.URL)
		if v.Display != nil {
			b.WriteString(" ")
			b.WriteString(*v.Display)
		}
		b.WriteString("]")
	case ast.Plural:
		renderMagicWord(b, "PLURAL", v.Selector, v.Forms)
	case ast.Gender:
		renderMagicWord(b, "GENDER", v.Selector, v.Forms)
	}
}

func renderMagicWord(b *strings.Builder, name string, sel ast.Selector, forms []ast.Nodes) {
	b.WriteString("{{")
	b.WriteString(name)
	b.WriteString(":")
	b.WriteString(sel.String())
	for _, f := range forms {
		b.WriteString("|")
		renderInto(b, f)
	}
	b.WriteString("}}")
}
