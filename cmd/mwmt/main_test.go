package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/mwmt"
	mwmtlocale "github.com/ZaguanLabs/mwmt/locale"
)

func TestRunTranslateMock(t *testing.T) {
	useMock = true
	sourceLocale = "en"
	verbose = false
	defer func() { useMock = false }()

	err := runTranslate(context.Background(), "Hello, $1!", "fr")
	if err != nil {
		t.Fatalf("runTranslate failed: %v", err)
	}
}

func TestRunTranslateRequiresAPIKeyWithoutMock(t *testing.T) {
	useMock = false
	apiKey = ""
	t.Setenv("GOOGLE_TRANSLATE_API_KEY", "")

	err := runTranslate(context.Background(), "Hello", "fr")
	if err == nil {
		t.Fatal("expected an error when no API key is configured")
	}

	var cfgErr *mwmt.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *mwmt.ConfigError, got %T: %v", err, err)
	}
}

func TestRunDryRunReportsAxesAndVariants(t *testing.T) {
	var buf strings.Builder
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runDryRun("There {{PLURAL:$1|is|are}} $1 item", "ar")

	w.Close()
	os.Stdout = old
	buf.WriteString(readAll(t, r))

	if err != nil {
		t.Fatalf("runDryRun failed: %v", err)
	}

	var result struct {
		Axes []struct {
			Kind   string `json:"kind"`
			States int    `json:"states"`
		} `json:"axes"`
		Variants []string `json:"variants"`
	}
	if err := json.Unmarshal([]byte(buf.String()), &result); err != nil {
		t.Fatalf("failed to parse dry-run JSON: %v\noutput: %s", err, buf.String())
	}

	if len(result.Axes) != 1 || result.Axes[0].Kind != "PLURAL" {
		t.Fatalf("expected one PLURAL axis, got %+v", result.Axes)
	}
	if result.Axes[0].States != 6 {
		t.Errorf("expected 6 Arabic categories, got %d", result.Axes[0].States)
	}
	if len(result.Variants) != 6 {
		t.Errorf("expected 6 variants, got %d", len(result.Variants))
	}
}

func TestRunDryRunReportsRepresentativeValuesForPluralAxis(t *testing.T) {
	var buf strings.Builder
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runDryRun("There {{PLURAL:$1|is|are}} $1 item", "ar")

	w.Close()
	os.Stdout = old
	buf.WriteString(readAll(t, r))

	if err != nil {
		t.Fatalf("runDryRun failed: %v", err)
	}

	var result struct {
		Axes []struct {
			Kind                 string `json:"kind"`
			RepresentativeValues []int  `json:"representative_values"`
		} `json:"axes"`
	}
	if err := json.Unmarshal([]byte(buf.String()), &result); err != nil {
		t.Fatalf("failed to parse dry-run JSON: %v\noutput: %s", err, buf.String())
	}
	if len(result.Axes) != 1 || len(result.Axes[0].RepresentativeValues) == 0 {
		t.Fatalf("expected representative_values on the PLURAL axis, got %+v", result.Axes)
	}
}

func TestRunDryRunRejectsMalformedWikitext(t *testing.T) {
	err := runDryRun("{{PLURAL:$1|one", "en")
	if err == nil {
		t.Fatal("expected a parse error for unbalanced braces")
	}
	var parseErr *mwmt.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *mwmt.ParseError, got %T", err)
	}
}

func TestRunBatchWritesSuggestionsForEveryMessage(t *testing.T) {
	useMock = true
	defer func() { useMock = false }()

	dir := t.TempDir()
	input := filepath.Join(dir, "messages.json")
	if err := os.WriteFile(input, []byte(`{"greeting":"Hello, $1!","farewell":"Bye"}`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	var buf strings.Builder
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runBatch(context.Background(), input, "fr", 2, 3600, "", "")

	w.Close()
	os.Stdout = old
	buf.WriteString(readAll(t, r))

	if err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &out); err != nil {
		t.Fatalf("failed to parse batch output: %v\noutput: %s", err, buf.String())
	}
	if _, ok := out["greeting"]; !ok {
		t.Error("expected a greeting entry in batch output")
	}
	if _, ok := out["farewell"]; !ok {
		t.Error("expected a farewell entry in batch output")
	}
}

func TestRunBatchRejectsMissingFile(t *testing.T) {
	err := runBatch(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "fr", 1, 3600, "", "")
	if err == nil {
		t.Fatal("expected an error for a missing batch file")
	}
	var parseErr *mwmt.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *mwmt.ParseError, got %T", err)
	}
}

func TestRunBatchExportsAndReimportsCache(t *testing.T) {
	useMock = true
	defer func() { useMock = false }()

	dir := t.TempDir()
	input := filepath.Join(dir, "messages.json")
	if err := os.WriteFile(input, []byte(`{"greeting":"Hello, $1!"}`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	cacheFile := filepath.Join(dir, "cache.json")

	discardStdout(t, func() {
		if err := runBatch(context.Background(), input, "fr", 1, 3600, "", cacheFile); err != nil {
			t.Fatalf("runBatch (export) failed: %v", err)
		}
	})

	if _, err := os.Stat(cacheFile); err != nil {
		t.Fatalf("expected an exported cache file: %v", err)
	}

	discardStdout(t, func() {
		if err := runBatch(context.Background(), input, "fr", 1, 3600, cacheFile, ""); err != nil {
			t.Fatalf("runBatch (import) failed: %v", err)
		}
	})
}

func TestRunBatchRejectsUnreadableImportCache(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "messages.json")
	os.WriteFile(input, []byte(`{"greeting":"Hi"}`), 0o644)

	useMock = true
	defer func() { useMock = false }()

	err := runBatch(context.Background(), input, "fr", 1, 3600, filepath.Join(dir, "missing-cache.json"), "")
	if err == nil {
		t.Fatal("expected an error for a missing import-cache file")
	}
	var cacheErr *mwmt.CacheError
	if !errors.As(err, &cacheErr) {
		t.Errorf("expected *mwmt.CacheError, got %T: %v", err, err)
	}
}

func discardStdout(t *testing.T, fn func()) {
	t.Helper()
	old := os.Stdout
	_, w, _ := os.Pipe()
	os.Stdout = w
	defer func() {
		w.Close()
		os.Stdout = old
	}()
	fn()
}

func TestNewLocalesCmdListsSortedKnownLocales(t *testing.T) {
	cmd := newLocalesCmd()

	var buf strings.Builder
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := cmd.RunE(cmd, nil)

	w.Close()
	os.Stdout = old
	buf.WriteString(readAll(t, r))

	if err != nil {
		t.Fatalf("locales command failed: %v", err)
	}

	want := strings.Join(mwmtlocale.SortedKnownLocales(), "\n")
	got := strings.TrimRight(buf.String(), "\n")
	if got != want {
		t.Errorf("locales output = %q, want %q", got, want)
	}
}

func TestExitCodeForUsageError(t *testing.T) {
	err := &usageError{err: errors.New("accepts 2 arg(s), received 1")}
	if code := exitCodeFor(err); code != exitUsageError {
		t.Errorf("exitCodeFor(usageError) = %d, want %d", code, exitUsageError)
	}
}

func TestExitCodeForConfigError(t *testing.T) {
	err := &mwmt.ConfigError{Message: "no API key"}
	if code := exitCodeFor(err); code != exitConfigError {
		t.Errorf("exitCodeFor(ConfigError) = %d, want %d", code, exitConfigError)
	}
}

func TestExitCodeForPipelineError(t *testing.T) {
	err := &mwmt.TranslationError{Message: "provider unavailable"}
	if code := exitCodeFor(err); code != exitPipeline {
		t.Errorf("exitCodeFor(TranslationError) = %d, want %d", code, exitPipeline)
	}
}

func TestExitCodeForCacheError(t *testing.T) {
	err := &mwmt.CacheError{Message: "importing cache from x.json"}
	if code := exitCodeFor(err); code != exitPipeline {
		t.Errorf("exitCodeFor(CacheError) = %d, want %d", code, exitPipeline)
	}
}

func readAll(t *testing.T, r *os.File) string {
	t.Helper()
	var b strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return b.String()
}
