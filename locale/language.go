package locale

import "strings"

// names holds human-readable language names for the locales this
// pipeline's examples and tests exercise. Unlike the plural table this
// is not exhaustive; GetLanguageName falls back to the locale code
// itself for anything missing.
var names = map[string]string{
	"en": "English",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"ru": "Russian",
	"uk": "Ukrainian",
	"ar": "Arabic",
	"he": "Hebrew",
	"fa": "Persian",
	"ur": "Urdu",
	"pl": "Polish",
	"cs": "Czech",
	"sk": "Slovak",
	"lt": "Lithuanian",
}

// rtl lists base language tags written right-to-left.
var rtl = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"yi": true,
	"dv": true,
}

// GetLanguageName returns a human-readable name for loc, falling back
// to the locale string itself when unknown.
func GetLanguageName(loc string) string {
	base := strings.ToLower(baseLanguage(loc))
	if name, ok := names[base]; ok {
		return name
	}
	return loc
}

// IsRTL reports whether loc is conventionally written right-to-left.
func IsRTL(loc string) bool {
	return rtl[strings.ToLower(baseLanguage(loc))]
}

// GetDirection returns "rtl" or "ltr" for loc, suitable for an HTML
// dir attribute.
func GetDirection(loc string) string {
	if IsRTL(loc) {
		return "rtl"
	}
	return "ltr"
}

// NormalizeLocale converts a BCP-47-ish tag's separator to underscore
// ("es-ES" -> "es_ES"), the form this pipeline's external interfaces use.
func NormalizeLocale(loc string) string {
	return strings.ReplaceAll(loc, "-", "_")
}

// ToHTMLLang converts an underscore-joined locale back to the hyphenated
// form HTML's lang attribute expects ("es_ES" -> "es-ES").
func ToHTMLLang(loc string) string {
	return strings.ReplaceAll(loc, "_", "-")
}
