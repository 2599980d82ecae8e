// Package expansion enumerates every concrete variant of a message
// that carries PLURAL/GENDER magic words, sampling one representative
// state per axis so a provider can translate plain text instead of
// wikitext syntax.
package expansion

import (
	"fmt"
	"strconv"

	"github.com/ZaguanLabs/mwmt/anchor"
	"github.com/ZaguanLabs/mwmt/ast"
	"github.com/ZaguanLabs/mwmt/locale"
)

// MaxVariants bounds how large a single message's cartesian expansion
// may grow before it is rejected rather than translated.
const MaxVariants = 64

// genderStates is the fixed cardinality of a GENDER axis: male,
// female, and the neutral/unknown fallback, independent of locale.
const genderStates = 3

// BoundError is returned when a message's axes would expand past
// MaxVariants.
type BoundError struct {
	Count int
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("expansion: %d variants exceeds the %d-variant bound", e.Count, MaxVariants)
}

// Kind distinguishes the two magic words this pipeline understands.
type Kind int

const (
	Plural Kind = iota
	Gender
)

func (k Kind) String() string {
	if k == Plural {
		return "PLURAL"
	}
	return "GENDER"
}

// Axis is one shared dimension of variation. Two magic-word sites that
// read the same placeholder index resolve to the same Axis and are
// sampled together, so they never disagree on which state a given
// variant represents — the axis-sharing behavior the source material
// this pipeline was built from does not itself implement.
type Axis struct {
	ID         uint
	Kind       Kind
	StateCount int
}

// Variant is one fully rendered, axis-anchored instance of a message,
// ready to hand to a provider.
type Variant struct {
	// State maps each axis ID to the 0-based state index this variant
	// samples for that axis.
	State map[uint]int
	// SourceText is the rendered wikitext with every placeholder
	// already replaced by its anchor token.
	SourceText string
}

// Plan is the full output of Expand: every axis discovered and every
// variant sampled from their cartesian product.
type Plan struct {
	Axes           []Axis
	Variants       []Variant
	MaxPlaceholder uint
}

// Expand walks nodes, discovers every PLURAL/GENDER axis, and renders
// one Variant per point in their cartesian product. Literal selectors
// (e.g. {{PLURAL:5|...}}) resolve to a single fixed form at this stage
// and never contribute an axis.
func Expand(nodes ast.Nodes, targetLocale string) (*Plan, error) {
	axes := collectAxes(nodes, targetLocale)

	count := 1
	for _, a := range axes {
		count *= a.StateCount
		if count > MaxVariants {
			return nil, &BoundError{Count: count}
		}
	}

	maxPlaceholder := ast.MaxPlaceholder(nodes)
	reg := anchor.New(maxPlaceholder)

	combos := combinations(axes)
	variants := make([]Variant, 0, len(combos))
	for _, combo := range combos {
		rendered := renderNodes(nodes, combo, targetLocale)
		variants = append(variants, Variant{
			State:      combo,
			SourceText: reg.EncodeAll(rendered),
		})
	}

	return &Plan{Axes: axes, Variants: variants, MaxPlaceholder: maxPlaceholder}, nil
}

func collectAxes(nodes ast.Nodes, targetLocale string) []Axis {
	seen := make(map[uint]bool)
	var axes []Axis

	ast.Walk(nodes, func(n ast.Node) bool {
		switch v := n.(type) {
		case ast.Plural:
			if v.Selector.IsAxis() && !seen[v.Selector.Index] {
				seen[v.Selector.Index] = true
				axes = append(axes, Axis{ID: v.Selector.Index, Kind: Plural, StateCount: locale.CategoryCount(targetLocale)})
			}
		case ast.Gender:
			if v.Selector.IsAxis() && !seen[v.Selector.Index] {
				seen[v.Selector.Index] = true
				axes = append(axes, Axis{ID: v.Selector.Index, Kind: Gender, StateCount: genderStates})
			}
		}
		return true
	})

	return axes
}

// combinations returns the cartesian product of every axis's state
// range, in deterministic odometer order: the last axis varies
// fastest, matching the order a human reading "axis 1, axis 2, ..."
// would expect the table to be laid out in.
func combinations(axes []Axis) []map[uint]int {
	if len(axes) == 0 {
		return []map[uint]int{{}}
	}
	var out []map[uint]int
	var build func(i int, acc map[uint]int)
	build = func(i int, acc map[uint]int) {
		if i == len(axes) {
			cp := make(map[uint]int, len(acc))
			for k, v := range acc {
				cp[k] = v
			}
			out = append(out, cp)
			return
		}
		axis := axes[i]
		for s := 0; s < axis.StateCount; s++ {
			acc[axis.ID] = s
			build(i+1, acc)
		}
		delete(acc, axis.ID)
	}
	build(0, map[uint]int{})
	return out
}

func renderNodes(nodes ast.Nodes, combo map[uint]int, targetLocale string) string {
	var out []byte
	for _, n := range nodes {
		out = append(out, renderNode(n, combo, targetLocale)...)
	}
	return string(out)
}

func renderNode(n ast.Node, combo map[uint]int, targetLocale string) string {
	switch v := n.(type) {
	case ast.Text:
		return string(v)
	case ast.Placeholder:
		return "$" + strconv.FormatUint(uint64(v.Index), 10)
	case ast.InternalLink:
		if v.Display != nil {
			return "[[" + v.Target + "|" + *v.Display + "]]"
		}
		return "[[" + v.Target + "]]"
	case ast.ExternalLink:
		if v.Display != nil {
			return "[" + v.URL + " " + *v.Display + "]"
		}
		return "[" + v.URL + "]"
	case ast.Plural:
		form := resolveForm(Plural, v.Selector, v.Forms, combo, targetLocale)
		return renderNodes(form, combo, targetLocale)
	case ast.Gender:
		form := resolveForm(Gender, v.Selector, v.Forms, combo, targetLocale)
		return renderNodes(form, combo, targetLocale)
	}
	return ""
}

func resolveForm(kind Kind, sel ast.Selector, forms []ast.Nodes, combo map[uint]int, targetLocale string) ast.Nodes {
	var stateCount, index int
	if sel.IsAxis() {
		index = combo[sel.Index]
		if kind == Plural {
			stateCount = locale.CategoryCount(targetLocale)
		} else {
			stateCount = genderStates
		}
	} else {
		index, stateCount = resolveLiteral(kind, sel.Literal, targetLocale)
	}

	padded := padTo(forms, stateCount)
	if index < 0 || index >= len(padded) {
		index = len(padded) - 1
	}
	return padded[index]
}

func resolveLiteral(kind Kind, literal string, targetLocale string) (index, stateCount int) {
	if kind == Gender {
		switch literal {
		case "male":
			return 0, genderStates
		case "female":
			return 1, genderStates
		default:
			return 2, genderStates
		}
	}

	stateCount = locale.CategoryCount(targetLocale)
	n, err := strconv.Atoi(literal)
	if err != nil {
		return stateCount - 1, stateCount
	}
	category := locale.CategoryForInt(targetLocale, n)
	return locale.IndexOfCategory(targetLocale, category), stateCount
}

func padTo(forms []ast.Nodes, count int) []ast.Nodes {
	if len(forms) == count {
		return forms
	}
	out := make([]ast.Nodes, count)
	for i := 0; i < count; i++ {
		switch {
		case i < len(forms):
			out[i] = forms[i]
		case len(forms) > 0:
			out[i] = forms[len(forms)-1]
		}
	}
	return out
}
