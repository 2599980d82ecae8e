// Package cache provides a string cache for suggestion output: the
// front ends store a suggestion's reassembled wikitext under a key
// built from the source text hash, source locale, target locale and
// provider name, so repeat suggestions for the same message skip the
// MT backend entirely. This is a cache of strings, distinct from
// persisting a Suggestion result itself.
package cache

// TranslationCache is the interface for provider-response caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}
