package mwmt

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash and target locale.
func CacheKey(hash, targetLocale string) string {
	return hash + ":" + targetLocale
}

// CacheKeyExtended generates an extended cache key including source locale and model.
// Use this when you need to differentiate translations by source locale or MT model.
func CacheKeyExtended(hash, sourceLocale, targetLocale, model string) string {
	return hash + ":" + sourceLocale + ":" + targetLocale + ":" + model
}
