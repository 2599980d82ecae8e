// Package mwmt provides MT-assisted translation suggestions for
// MediaWiki-style wikitext messages.
//
// mwmt parses a message, expands its PLURAL/GENDER magic words into
// every combination a target locale distinguishes, sends the plain-text
// variants to an MT provider, and reassembles the translated variants
// back into wikitext with the magic words restored around whatever
// span the target language's grammar actually requires — which need
// not match the source's span.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/mwmt"
//	    "github.com/ZaguanLabs/mwmt/provider"
//	)
//
//	func main() {
//	    p := provider.NewRestProvider(provider.RestConfig{
//	        APIKey: os.Getenv("GOOGLE_TRANSLATE_API_KEY"),
//	    })
//
//	    o := mwmt.NewOrchestrator()
//	    s, err := o.Suggest(context.Background(), "en", "fr",
//	        "item-count", "There {{PLURAL:$1|is|are}} $1 item", p)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(s.Wikitext)
//	}
package mwmt
