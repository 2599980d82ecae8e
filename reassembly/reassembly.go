// Package reassembly folds a set of translated message variants back
// into a single piece of wikitext that still carries PLURAL/GENDER
// magic words, instead of one frozen form per variant.
package reassembly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/mwmt/expansion"
)

// consistencyThreshold is the minimum Dice-coefficient similarity every
// pair of a fold group's full variant texts must share before
// reassembly gives up
// on that axis rather than guessing at a reconstruction MT corrupted
// beyond recognition.
const consistencyThreshold = 0.70

// ConsistencyFailure reports that an axis's translated variants
// disagreed with each other too much to fold into one template.
type ConsistencyFailure struct {
	AxisID     uint
	Similarity float64
}

func (e *ConsistencyFailure) Error() string {
	return fmt.Sprintf("reassembly: axis $%d's translated forms only agree %.0f%%, below the %.0f%% consistency threshold",
		e.AxisID, e.Similarity*100, consistencyThreshold*100)
}

// ScopeChange records that an axis's translated variable region grew
// or shrank relative to the word span the source text occupied, a
// sign the provider pulled neighboring context into or out of the
// magic word's forms.
type ScopeChange struct {
	AxisID int
	Reason string
}

// Result is the outcome of folding every axis back into one message.
type Result struct {
	Wikitext     string
	Confidence   float64
	ScopeChanges []ScopeChange
	Warnings     []string
}

// Reassemble folds plan's variants, once translated, back into a
// single message. translated must be the same length and order as
// plan.Variants; translated[i] is the MT output for plan.Variants[i].SourceText.
func Reassemble(plan *expansion.Plan, translated []string) (*Result, error) {
	if len(translated) != len(plan.Variants) {
		return nil, fmt.Errorf("reassembly: got %d translations for %d variants", len(translated), len(plan.Variants))
	}

	if len(plan.Axes) == 0 {
		return &Result{Wikitext: translated[0], Confidence: 1.0}, nil
	}

	baseIdx := indexOfAllZero(plan)
	base := translated[baseIdx]

	var scopeChanges []ScopeChange
	var warnings []string

	type replacement struct {
		start, end int
		text       string
	}
	var replacements []replacement

	for _, axis := range plan.Axes {
		group := groupForAxis(plan, axis.ID)

		transTexts := make([]string, len(group))
		srcTexts := make([]string, len(group))
		for i, idx := range group {
			transTexts[i] = translated[idx]
			srcTexts[i] = plan.Variants[idx].SourceText
		}

		prefix, suffix, middles, similarity, ok := foldGroup(transTexts)
		if !ok {
			return nil, &ConsistencyFailure{AxisID: axis.ID, Similarity: similarity}
		}

		_, _, srcMiddles, _, srcOK := foldGroup(srcTexts)
		if srcOK {
			for i := range middles {
				if wordCount(middles[i]) != wordCount(srcMiddles[i]) {
					scopeChanges = append(scopeChanges, ScopeChange{AxisID: int(axis.ID), Reason: "translated forms span a different number of words than the source forms"})
					break
				}
			}
		}

		start := len(prefix)
		end := len(base) - len(suffix)
		if start > end || end > len(base) {
			// the fold didn't land inside base's bounds (can happen if the
			// provider altered length enough that byte offsets drift);
			// fall back to substituting the whole base with the axis=0 form.
			start, end = 0, len(base)
			warnings = append(warnings, fmt.Sprintf("axis $%d: could not locate its span in the base variant precisely; used the whole message", axis.ID))
		}

		replacements = append(replacements, replacement{
			start: start,
			end:   end,
			text:  renderMagicWord(axis, middles),
		})
	}

	sort.Slice(replacements, func(i, j int) bool { return replacements[i].start > replacements[j].start })

	out := base
	for _, r := range replacements {
		out = out[:r.start] + r.text + out[r.end:]
	}

	for _, sc := range scopeChanges {
		warnings = append(warnings, fmt.Sprintf("axis $%d: %s", sc.AxisID, sc.Reason))
	}

	confidence := 1.0 - 0.1*float64(len(scopeChanges))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &Result{
		Wikitext:     out,
		Confidence:   confidence,
		ScopeChanges: scopeChanges,
		Warnings:     warnings,
	}, nil
}

func renderMagicWord(axis expansion.Axis, forms []string) string {
	name := "PLURAL"
	if axis.Kind == expansion.Gender {
		name = "GENDER"
	}
	return fmt.Sprintf("{{%s:$%d|%s}}", name, axis.ID, strings.Join(forms, "|"))
}

func indexOfAllZero(plan *expansion.Plan) int {
	for i, v := range plan.Variants {
		allZero := true
		for _, axis := range plan.Axes {
			if v.State[axis.ID] != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return i
		}
	}
	return 0
}

// groupForAxis returns the indices into plan.Variants whose state
// pins every axis except axisID at 0 and lets axisID vary across its
// full range, in state order.
func groupForAxis(plan *expansion.Plan, axisID uint) []int {
	var stateCount int
	for _, a := range plan.Axes {
		if a.ID == axisID {
			stateCount = a.StateCount
		}
	}
	members := make([]int, stateCount)
	for i, v := range plan.Variants {
		matchesOthers := true
		for _, axis := range plan.Axes {
			if axis.ID == axisID {
				continue
			}
			if v.State[axis.ID] != 0 {
				matchesOthers = false
				break
			}
		}
		if matchesOthers {
			state := v.State[axisID]
			if state >= 0 && state < stateCount {
				members[state] = i
			}
		}
	}
	return members
}

// foldGroup computes the common leading and trailing text shared by
// every member of texts (snapped to whitespace so a word is never cut
// in half), the remaining per-member "variable middle", and reports
// whether the group's full variant texts agree closely enough with
// each other (the consistency guard). The guard runs over the whole
// texts rather than the extracted middles, since the middles are
// exactly the part PLURAL/GENDER variation is expected to change.
func foldGroup(texts []string) (prefix, suffix string, middles []string, similarity float64, ok bool) {
	if len(texts) == 0 {
		return "", "", nil, 1.0, true
	}
	if len(texts) == 1 {
		return "", "", []string{texts[0]}, 1.0, true
	}

	prefix = commonPrefix(texts)
	rest := make([]string, len(texts))
	for i, t := range texts {
		rest[i] = t[len(prefix):]
	}
	suffix = commonSuffix(rest)

	prefix = snapPrefixToWordBoundary(prefix)
	suffix = snapSuffixToWordBoundary(suffix)

	middles = make([]string, len(texts))
	for i, t := range texts {
		end := len(t) - len(suffix)
		if end < len(prefix) {
			end = len(prefix)
		}
		middles[i] = t[len(prefix):end]
	}

	similarity = minPairwiseSimilarity(texts)
	return prefix, suffix, middles, similarity, similarity >= consistencyThreshold
}

func commonPrefix(texts []string) string {
	prefix := texts[0]
	for _, t := range texts[1:] {
		prefix = commonPrefixPair(prefix, t)
		if prefix == "" {
			break
		}
	}
	return prefix
}

func commonPrefixPair(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func commonSuffix(texts []string) string {
	suffix := texts[0]
	for _, t := range texts[1:] {
		suffix = commonSuffixPair(suffix, t)
		if suffix == "" {
			break
		}
	}
	return suffix
}

func commonSuffixPair(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return a[len(a)-i:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// snapPrefixToWordBoundary trims a computed common prefix back to the
// last whitespace run within it, so folding never leaves a partial
// word (e.g. "mess" of "message") stranded in the stable part.
func snapPrefixToWordBoundary(prefix string) string {
	if prefix == "" {
		return prefix
	}
	last := strings.LastIndexAny(prefix, " \t\n")
	if last == -1 {
		return ""
	}
	return prefix[:last+1]
}

// snapSuffixToWordBoundary trims a computed common suffix forward to
// the next whitespace run within it.
func snapSuffixToWordBoundary(suffix string) string {
	if suffix == "" {
		return suffix
	}
	first := strings.IndexAny(suffix, " \t\n")
	if first == -1 {
		return ""
	}
	return suffix[first:]
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// minPairwiseSimilarity returns the lowest Dice-coefficient similarity
// (2*|LCS|/(lenA+lenB)) between any two members of texts, the weakest
// link the consistency guard checks against its threshold.
func minPairwiseSimilarity(texts []string) float64 {
	if len(texts) < 2 {
		return 1.0
	}
	lowest := 1.0
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			s := diceSimilarity(texts[i], texts[j])
			if s < lowest {
				lowest = s
			}
		}
	}
	return lowest
}

func diceSimilarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	l := lcsLength(a, b)
	return 2 * float64(l) / float64(len([]rune(a))+len([]rune(b)))
}

// lcsLength computes the longest common subsequence length between a
// and b via the standard O(len(a)*len(b)) dynamic program.
func lcsLength(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
