package main

import (
	"os"

	"github.com/leonelquinteros/gotext"
)

// domain is the gettext domain name for this CLI's own UI strings,
// distinct from the wikitext messages the tool translates.
const domain = "mwmt"

var po *gotext.Locale

// initI18n loads the CLI's own --help/--verbose strings through a
// gotext catalog under localesDir, independently of the locale the
// tool is asked to translate messages into. A missing catalog is not
// an error: gotext.Get falls back to the original string.
func initI18n(lang, localesDir string) {
	if lang == "" {
		lang = detectLanguage()
	}
	po = gotext.NewLocale(localesDir, lang)
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a UI string through the loaded catalog, or returns it
// unchanged if no catalog is loaded or no translation is found.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "en"
}
