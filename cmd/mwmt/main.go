// Command mwmt produces an MT-assisted wikitext translation suggestion
// for a single MediaWiki-style message, or a batch of them read from a
// JSON file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/mwmt"
	"github.com/ZaguanLabs/mwmt/cache"
	"github.com/ZaguanLabs/mwmt/expansion"
	mwmtlocale "github.com/ZaguanLabs/mwmt/locale"
	"github.com/ZaguanLabs/mwmt/provider"
	"github.com/ZaguanLabs/mwmt/wikitext"
)

// usageError marks a failure that should exit with exitUsageError:
// bad arguments or flags, as opposed to a configuration or pipeline
// failure.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func wrapArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// Exit codes, per the tool's external interface: 0 success, 2 usage
// error, 3 config error, 4 pipeline error.
const (
	exitOK          = 0
	exitUsageError  = 2
	exitConfigError = 3
	exitPipeline    = 4
)

var (
	sourceLocale string
	useMock      bool
	verbose      bool
	apiKey       string
	locale       string
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mwmt <message> <target-locale>",
		Short: T("Suggest a machine-translated wikitext message"),
		Args:  wrapArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), args[0], args[1])
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&sourceLocale, "source", "en", T("source locale of the input message"))
	flags.BoolVar(&useMock, "mock", false, T("use an in-process mock provider instead of a live MT backend"))
	flags.BoolVarP(&verbose, "verbose", "v", false, T("print confidence and warnings to stderr and enable debug logging"))
	flags.StringVar(&apiKey, "key", "", T("MT backend API key (default: GOOGLE_TRANSLATE_API_KEY)"))
	flags.StringVar(&locale, "locale", "", T("locale for this CLI's own messages (default: auto-detect)"))

	root.AddCommand(newDryRunCmd(), newBatchCmd(), newLocalesCmd())

	cobra.OnInitialize(func() {
		initI18n(locale, "locales")
	})

	return root
}

func newDryRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run <message> <target-locale>",
		Short: T("show the expansion plan for a message without calling any provider"),
		Args:  wrapArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDryRun(args[0], args[1])
		},
		SilenceUsage: true,
	}
}

func newBatchCmd() *cobra.Command {
	var (
		workers     int
		cacheTTL    int
		exportCache string
		importCache string
	)
	cmd := &cobra.Command{
		Use:   "batch <file.json> <target-locale>",
		Short: T("suggest translations for every message in a JSON {key: text} file"),
		Args:  wrapArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), args[0], args[1], workers, cacheTTL, importCache, exportCache)
		},
		SilenceUsage: true,
	}
	cmd.Flags().IntVar(&workers, "workers", 4, T("number of concurrent workers"))
	cmd.Flags().IntVar(&cacheTTL, "cache-ttl", 3600, T("seconds a cached translation stays valid (0 disables expiry)"))
	cmd.Flags().StringVar(&importCache, "import-cache", "", T("seed the batch cache from a previously exported JSON file"))
	cmd.Flags().StringVar(&exportCache, "export-cache", "", T("write the batch cache's entries to a JSON file after the run"))
	return cmd
}

func newLocalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: T("list the locales this tool's plural rules cover"),
		Args:  wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range mwmtlocale.SortedKnownLocales() {
				fmt.Println(l)
			}
			return nil
		},
		SilenceUsage: true,
	}
}

// buildProvider wraps the concrete MT backend in a rate limiter and a
// retrying decorator, so a translate or batch run backs off from
// transient provider failures and never exceeds the backend's request
// budget. Both decorators are no-ops against the mock provider beyond
// their own bookkeeping, so --mock runs exercise the same call path as
// a live backend.
func buildProvider() (provider.Provider, error) {
	var p provider.Provider
	if useMock {
		p = provider.NewMockProvider(provider.ModeSuffix)
	} else {
		key := apiKey
		if key == "" {
			key = os.Getenv("GOOGLE_TRANSLATE_API_KEY")
		}
		if key == "" {
			return nil, &mwmt.ConfigError{Message: "no API key provided (--key or GOOGLE_TRANSLATE_API_KEY)"}
		}
		p = provider.NewRestProvider(provider.RestConfig{APIKey: key})
	}

	p = mwmt.NewRateLimitedProvider(p, mwmt.RateLimitConfig{})
	p = mwmt.NewRetryableProvider(p, mwmt.DefaultRetryConfig())
	return p, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func runTranslate(ctx context.Context, text, targetLocale string) error {
	p, err := buildProvider()
	if err != nil {
		return err
	}

	o := mwmt.NewOrchestrator(mwmt.WithLogger(newLogger()))
	s, err := o.Suggest(ctx, sourceLocale, targetLocale, "cli", text, p)
	if err != nil {
		return err
	}

	fmt.Println(s.Wikitext)
	if verbose {
		fmt.Fprintf(os.Stderr, "confidence: %.2f\n", s.Confidence)
		for _, w := range s.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
	return nil
}

func runDryRun(text, targetLocale string) error {
	nodes, err := wikitext.Parse(text)
	if err != nil {
		return &mwmt.ParseError{Message: "parsing message", Cause: err}
	}

	plan, err := expansion.Expand(nodes, targetLocale)
	if err != nil {
		return err
	}

	axes := make([]map[string]any, len(plan.Axes))
	for i, a := range plan.Axes {
		entry := map[string]any{
			"placeholder": a.ID,
			"kind":        a.Kind.String(),
			"states":      a.StateCount,
		}
		if a.Kind == expansion.Plural {
			entry["representative_values"] = mwmtlocale.RepresentativeValues(targetLocale)
		}
		axes[i] = entry
	}
	variants := make([]string, len(plan.Variants))
	for i, v := range plan.Variants {
		variants[i] = v.SourceText
	}

	out, err := json.MarshalIndent(map[string]any{
		"source":   text,
		"target":   targetLocale,
		"axes":     axes,
		"variants": variants,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runBatch(ctx context.Context, path, targetLocale string, workers, cacheTTL int, importCachePath, exportCachePath string) error {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads a user-specified file
	if err != nil {
		return &mwmt.ParseError{Message: fmt.Sprintf("reading %s", path), Cause: err}
	}

	var msgMap map[string]string
	if err := json.Unmarshal(data, &msgMap); err != nil {
		return &mwmt.ParseError{Message: fmt.Sprintf("parsing %s as JSON", path), Cause: err}
	}

	p, err := buildProvider()
	if err != nil {
		return err
	}

	c := cache.NewInMemoryCache(cacheTTL)
	if importCachePath != "" {
		if _, err := cache.NewImporter(c).ImportFromFile(importCachePath); err != nil {
			return &mwmt.CacheError{Message: fmt.Sprintf("importing cache from %s", importCachePath), Cause: err}
		}
	}

	msgs := make([]mwmt.BatchMessage, 0, len(msgMap))
	for k, v := range msgMap {
		msgs = append(msgs, mwmt.BatchMessage{Key: k, Text: v})
	}

	o := mwmt.NewOrchestrator(mwmt.WithLogger(newLogger()))
	results := o.SuggestBatch(ctx, sourceLocale, targetLocale, msgs, p, c, workers)

	if exportCachePath != "" {
		metadata := map[string]string{"source_locale": sourceLocale, "target_locale": targetLocale}
		if err := cache.NewExporter(c).ExportToFile(exportCachePath, metadata); err != nil {
			return &mwmt.CacheError{Message: fmt.Sprintf("exporting cache to %s", exportCachePath), Cause: err}
		}
	}

	out := map[string]any{
		"@metadata": map[string]any{
			"locale": targetLocale,
		},
	}
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		out[r.Key] = r.Suggestion.Wikitext
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if failed > 0 {
		return &mwmt.TranslationError{Message: fmt.Sprintf("%d of %d messages failed", failed, len(results))}
	}
	return nil
}

func exitCodeFor(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)

	var usageErr *usageError
	var invalidLocale *mwmt.InvalidLocaleError
	var parseErr *mwmt.ParseError
	if errors.As(err, &usageErr) || errors.As(err, &invalidLocale) || errors.As(err, &parseErr) {
		return exitUsageError
	}

	var cfgErr *mwmt.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfigError
	}

	return exitPipeline
}
