// Package locale supplies CLDR-style plural category metadata and
// language/direction lookups for the message tree the mt pipeline
// (root package mwmt) expands and reassembles.
package locale

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Category is a CLDR cardinal plural category.
type Category string

const (
	Zero  Category = "zero"
	One   Category = "one"
	Two   Category = "two"
	Few   Category = "few"
	Many  Category = "many"
	Other Category = "other"
)

// CategoryForm pairs a plural category with a representative integer
// for that category in this locale. Values are hand-picked, not derived
// from a rule engine; see pluralTable for why. Where CLDR reaches a
// category only through fractional numbers (ru/uk/pl "other", cs/sk/lt
// "many"), the integer is a stand-in that CategoryForInt classifies
// under a different category.
type CategoryForm struct {
	Category       Category
	Representative int
}

// pluralTable holds, per base language tag, the ordered list of
// cardinal categories the language distinguishes and one
// representative test integer per category. "other" is always last
// and always present, per CLDR.
//
// This module has no ICU-equivalent plural-rule evaluator available,
// so the table is a static hand-authored approximation of the real
// CLDR cardinal rule set, covering the locales this pipeline is
// exercised against. It deliberately mirrors the shape (not the
// algorithm) of a rule-engine-backed table: one representative
// integer per category, in category order.
var pluralTable = map[string][]CategoryForm{
	"en": {{One, 1}, {Other, 2}},
	"de": {{One, 1}, {Other, 2}},
	"es": {{One, 1}, {Other, 2}},
	"fr": {{One, 1}, {Other, 2}},
	"ja": {{Other, 1}},
	"zh": {{Other, 1}},
	"ko": {{Other, 1}},
	"ru": {{One, 1}, {Few, 2}, {Many, 5}, {Other, 100}},
	"uk": {{One, 1}, {Few, 2}, {Many, 5}, {Other, 100}},
	"ar": {{Zero, 0}, {One, 1}, {Two, 2}, {Few, 3}, {Many, 11}, {Other, 100}},
	"pl": {{One, 1}, {Few, 2}, {Many, 5}, {Other, 100}},
	"cs": {{One, 1}, {Few, 2}, {Many, 100}, {Other, 5}},
	"sk": {{One, 1}, {Few, 2}, {Many, 100}, {Other, 5}},
	"lt": {{One, 1}, {Few, 2}, {Many, 100}, {Other, 10}},
}

// fallback is used for any locale not in pluralTable: English-shaped,
// one/other, since that is the most common CLDR shape.
var fallback = []CategoryForm{{One, 1}, {Other, 2}}

// Canonicalize normalizes a locale tag the way golang.org/x/text/language
// would for matching purposes, but keeps the underscore-joined form
// this pipeline's external interfaces use (e.g. "es-ES" -> "es_ES").
func Canonicalize(locale string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("locale: invalid locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	region, regionConfidence := tag.Region()
	if regionConfidence != language.Exact {
		return base.String(), nil
	}
	return base.String() + "_" + region.String(), nil
}

// baseLanguage extracts the primary language subtag ("es" from "es_ES").
func baseLanguage(locale string) string {
	norm := strings.ReplaceAll(locale, "-", "_")
	if idx := strings.Index(norm, "_"); idx != -1 {
		return norm[:idx]
	}
	return norm
}

// CategoriesFor returns the ordered plural categories for locale,
// falling back to the generic one/other shape for unrecognized
// locales rather than erroring, since every language has at least
// that distinction.
func CategoriesFor(loc string) []CategoryForm {
	base := strings.ToLower(baseLanguage(loc))
	if forms, ok := pluralTable[base]; ok {
		return forms
	}
	return fallback
}

// CategoryCount reports how many plural categories a locale
// distinguishes.
func CategoryCount(loc string) int {
	return len(CategoriesFor(loc))
}

// FormsForCount pads or truncates an author-supplied PLURAL form list
// to exactly match locale's category count: missing trailing forms
// repeat the last supplied form, and surplus forms are dropped. This
// mirrors how MediaWiki itself tolerates authors who under- or
// over-supply PLURAL forms relative to a target locale's CLDR
// category count.
func FormsForCount[T any](loc string, forms []T) []T {
	want := CategoryCount(loc)
	if len(forms) == want {
		return forms
	}
	out := make([]T, want)
	for i := 0; i < want; i++ {
		switch {
		case i < len(forms):
			out[i] = forms[i]
		case len(forms) > 0:
			out[i] = forms[len(forms)-1]
		}
	}
	return out
}

// RepresentativeValues returns the representative test integers for
// loc, in category order, suitable for driving expansion of a PLURAL
// axis bound to a placeholder (rather than a literal selector).
func RepresentativeValues(loc string) []int {
	forms := CategoriesFor(loc)
	values := make([]int, len(forms))
	for i, f := range forms {
		values[i] = f.Representative
	}
	return values
}

// CategoryForInt classifies an integer into a CLDR cardinal category
// for loc. Like the rest of this package, the rules are a hand-authored
// approximation of the real CLDR cardinal rule set (no ICU-equivalent
// rule evaluator is available), covering the locales this pipeline is
// exercised against; fractional/decimal cardinalities are out of scope
// since magic-word selectors in wikitext are always integers.
func CategoryForInt(loc string, n int) Category {
	base := strings.ToLower(baseLanguage(loc))
	mod10, mod100 := n%10, n%100

	switch base {
	case "en", "de", "es":
		if n == 1 {
			return One
		}
		return Other
	case "fr":
		if n == 0 || n == 1 {
			return One
		}
		return Other
	case "ja", "zh", "ko":
		return Other
	case "ru", "uk":
		switch {
		case mod10 == 1 && mod100 != 11:
			return One
		case mod10 >= 2 && mod10 <= 4 && !(mod100 >= 12 && mod100 <= 14):
			return Few
		case mod10 == 0 || (mod10 >= 5 && mod10 <= 9) || (mod100 >= 11 && mod100 <= 14):
			return Many
		default:
			return Other
		}
	case "pl":
		switch {
		case n == 1:
			return One
		case mod10 >= 2 && mod10 <= 4 && !(mod100 >= 12 && mod100 <= 14):
			return Few
		default:
			return Many
		}
	case "cs", "sk":
		switch {
		case n == 1:
			return One
		case n >= 2 && n <= 4:
			return Few
		default:
			return Other
		}
	case "lt":
		switch {
		case mod10 == 1 && !(mod100 >= 11 && mod100 <= 19):
			return One
		case mod10 >= 2 && mod10 <= 9 && !(mod100 >= 11 && mod100 <= 19):
			return Few
		default:
			return Other
		}
	case "ar":
		switch {
		case n == 0:
			return Zero
		case n == 1:
			return One
		case n == 2:
			return Two
		case mod100 >= 3 && mod100 <= 10:
			return Few
		case mod100 >= 11 && mod100 <= 99:
			return Many
		default:
			return Other
		}
	default:
		if n == 1 {
			return One
		}
		return Other
	}
}

// IndexOfCategory returns the position of category within loc's
// ordered category list, or the last index (the "other" slot) if the
// category is not one loc distinguishes.
func IndexOfCategory(loc string, category Category) int {
	forms := CategoriesFor(loc)
	for i, f := range forms {
		if f.Category == category {
			return i
		}
	}
	return len(forms) - 1
}

// SortedKnownLocales returns the base language tags this module has an
// explicit CLDR table entry for, sorted for deterministic output (used
// by the CLI's `locales` subcommand).
func SortedKnownLocales() []string {
	out := make([]string, 0, len(pluralTable))
	for k := range pluralTable {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
