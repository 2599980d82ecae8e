package mwmt

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/mwmt/cache"
	"github.com/ZaguanLabs/mwmt/provider"
)

// BatchMessage is one input to SuggestBatch: a message key/text pair
// to run through an Orchestrator.
type BatchMessage struct {
	Key  string
	Text string
}

// BatchResult pairs a BatchMessage's key with the Suggestion produced
// for it, or the error that prevented one. Cached reports whether the
// result came from the cache rather than a fresh provider call.
type BatchResult struct {
	Key        string
	Suggestion *Suggestion
	Err        error
	Cached     bool
}

// parallelCacheLookup performs cache lookups for a batch of messages
// in parallel, one goroutine per distinct source-text hash so that
// identical messages addressed at different keys share a single
// lookup. Cache keys are derived with CacheKeyExtended so that a
// cache shared across providers or source locales never serves a
// translation produced under a different one of either. Returns a map
// of hash to cached wikitext, and the indices into msgs that missed
// the cache (or have no cache at all).
func parallelCacheLookup(c cache.TranslationCache, msgs []BatchMessage, sourceLocale, targetLocale, model string) (map[string]string, []int) {
	if c == nil || len(msgs) == 0 {
		misses := make([]int, len(msgs))
		for i := range msgs {
			misses[i] = i
		}
		return make(map[string]string), misses
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	hashOf := make([]string, len(msgs))
	uniqueHashes := make(map[string]bool)
	for i, m := range msgs {
		h := HashText(m.Text)
		hashOf[i] = h
		uniqueHashes[h] = true
	}

	results := make(chan lookupResult, len(uniqueHashes))
	var wg sync.WaitGroup

	for h := range uniqueHashes {
		wg.Add(1)
		go func(hash string) {
			defer wg.Done()
			key := CacheKeyExtended(hash, sourceLocale, targetLocale, model)
			if val, ok := c.Get(key); ok {
				results <- lookupResult{hash: hash, value: val, found: true}
			} else {
				results <- lookupResult{hash: hash, found: false}
			}
		}(h)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	translations := make(map[string]string)
	for r := range results {
		if r.found {
			translations[r.hash] = r.value
		}
	}

	var misses []int
	for i, h := range hashOf {
		if _, ok := translations[h]; !ok {
			misses = append(misses, i)
		}
	}

	return translations, misses
}

// SuggestBatch runs Suggest for every message in msgs, bounded by
// workers concurrent goroutines sharing p and c immutably: the AST and
// every per-message value are owned by exactly one goroutine, so no
// lock is needed in this package beyond whatever c's own
// implementation uses internally. c may be nil to skip caching.
// Results are returned in the same order as msgs.
func (o *Orchestrator) SuggestBatch(ctx context.Context, sourceLocale, targetLocale string, msgs []BatchMessage, p provider.Provider, c cache.TranslationCache, workers int) []BatchResult {
	if len(msgs) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}

	model := p.Name()
	cachedByHash, misses := parallelCacheLookup(c, msgs, sourceLocale, targetLocale, model)

	results := make([]BatchResult, len(msgs))
	for i, m := range msgs {
		if wikitext, ok := cachedByHash[HashText(m.Text)]; ok {
			results[i] = BatchResult{Key: m.Key, Suggestion: &Suggestion{Wikitext: wikitext, Confidence: 1.0}, Cached: true}
		}
	}

	if len(misses) == 0 {
		return results
	}
	if workers > len(misses) {
		workers = len(misses)
	}

	jobs := make(chan int, len(misses))
	for _, idx := range misses {
		jobs <- idx
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				m := msgs[idx]
				s, err := o.Suggest(ctx, sourceLocale, targetLocale, m.Key, m.Text, p)
				results[idx] = BatchResult{Key: m.Key, Suggestion: s, Err: err}
				if err == nil && c != nil {
					_ = c.Set(CacheKeyExtended(HashText(m.Text), sourceLocale, targetLocale, model), s.Wikitext)
				}
			}
		}()
	}
	wg.Wait()

	return results
}
