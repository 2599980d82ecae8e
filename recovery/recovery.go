// Package recovery reverses the anchor substitution the expansion
// engine applied, restoring $N placeholders in a reassembled message
// without aborting when an anchor turns up missing or malformed — the
// translator can still act on a suggestion with a recovery warning
// attached.
package recovery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/mwmt/anchor"
)

// leftover matches a digit run (tolerating the same internal
// whitespace anchor.DecodeAll tolerates) that still looks like an
// anchor shape after decoding.
var leftover = regexp.MustCompile(`\d(?:[ \t]?\d)*`)

// Result is the outcome of recovering placeholders from a reassembled
// message.
type Result struct {
	Wikitext string
	Warnings []string
}

// Recover replaces every anchor token in wikitext with its original
// $N placeholder via anchor.DecodeAll. expected lists the placeholder
// indices the caller knows should appear in the output (gathered from
// the parsed source message via ast.PlaceholderIndices); an expected
// index missing after decoding, or a leftover anchor-shaped token
// decoding declined to touch, is reported as a warning rather than an
// error.
func Recover(wikitext string, expected []uint) Result {
	decoded := anchor.DecodeAll(wikitext)

	var warnings []string
	for _, idx := range expected {
		token := "$" + strconv.FormatUint(uint64(idx), 10)
		if !strings.Contains(decoded, token) {
			warnings = append(warnings, fmt.Sprintf("placeholder $%d expected but not found after recovery", idx))
		}
	}

	for _, match := range leftover.FindAllString(decoded, -1) {
		normalized := stripSpaces(match)
		if len(normalized) >= 6 && strings.HasPrefix(normalized, "777") {
			warnings = append(warnings, fmt.Sprintf("found a leftover anchor-shaped token %q after recovery; treated as literal text", match))
		}
	}

	return Result{Wikitext: decoded, Warnings: warnings}
}

func stripSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
