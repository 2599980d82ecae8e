package reassembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/mwmt/expansion"
	"github.com/ZaguanLabs/mwmt/wikitext"
)

func plan(t *testing.T, src, locale string) *expansion.Plan {
	t.Helper()
	nodes, err := wikitext.Parse(src)
	require.NoError(t, err)
	p, err := expansion.Expand(nodes, locale)
	require.NoError(t, err)
	return p
}

func TestReassembleSingleAxisNoScopeChange(t *testing.T) {
	p := plan(t, "You have {{PLURAL:$1|one message|$1 messages}}", "en")
	require.Len(t, p.Variants, 2)

	translated := []string{
		"Tienes un mensaje",
		"Tienes 777001 mensajes",
	}

	result, err := Reassemble(p, translated)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Empty(t, result.ScopeChanges)
	assert.Contains(t, result.Wikitext, "{{PLURAL:$1|")
	assert.Contains(t, result.Wikitext, "un mensaje")
	assert.Contains(t, result.Wikitext, "777001 mensajes")
}

func TestReassembleNoAxesPassesThroughSingleVariant(t *testing.T) {
	p := plan(t, "hello world", "en")
	require.Len(t, p.Variants, 1)

	result, err := Reassemble(p, []string{"hola mundo"})
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", result.Wikitext)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestReassembleConsistencyGuardRejectsDivergentTranslations(t *testing.T) {
	p := plan(t, "{{PLURAL:$1|one|many}} item", "en")
	require.Len(t, p.Variants, 2)

	translated := []string{
		"one fish blue fish red fish",
		"completely unrelated sentence about cats",
	}

	_, err := Reassemble(p, translated)
	require.Error(t, err)
	var cf *ConsistencyFailure
	require.ErrorAs(t, err, &cf)
}

func TestReassembleTwoAxesBothReconstructed(t *testing.T) {
	src := "{{GENDER:$1|He|She|They}} has {{PLURAL:$2|one item|$2 items}}"
	p := plan(t, src, "en")
	require.Len(t, p.Axes, 2)
	require.Len(t, p.Variants, 6)

	translated := make([]string, len(p.Variants))
	genderWord := []string{"El", "Ella", "Elle"}
	for i, v := range p.Variants {
		g := v.State[p.Axes[0].ID]
		plu := v.State[p.Axes[1].ID]
		if plu == 0 {
			translated[i] = genderWord[g] + " tiene un artículo"
		} else {
			translated[i] = genderWord[g] + " tiene 777002 artículos"
		}
	}

	result, err := Reassemble(p, translated)
	require.NoError(t, err)
	assert.Contains(t, result.Wikitext, "{{GENDER:$1|")
	assert.Contains(t, result.Wikitext, "{{PLURAL:$2|")
}
