// Command mwmt-server is a thin REST front end over the Suggestion
// Orchestrator: one HTTP request maps to at most one Orchestrator.Suggest
// call; a repeated identical translate request is answered from the
// cache without calling it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/mwmt"
	"github.com/ZaguanLabs/mwmt/cache"
	"github.com/ZaguanLabs/mwmt/preview"
	"github.com/ZaguanLabs/mwmt/provider"
	"github.com/ZaguanLabs/mwmt/wikitext"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>mwmt</title></head>
<body>
<h1>mwmt</h1>
<p>POST a JSON body to <code>/api/translate</code>: <code>{"message": "...", "target_language": "...", "key": "..."}</code></p>
</body>
</html>
`

type translateRequest struct {
	Message        string `json:"message"`
	TargetLanguage string `json:"target_language"`
	Key            string `json:"key"`
}

type translateResponse struct {
	Translated string `json:"translated"`
	Source     string `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type server struct {
	orchestrator *mwmt.Orchestrator
	provider     provider.Provider
	cache        cache.TranslationCache
	sourceLocale string
	logger       zerolog.Logger
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	mock := os.Getenv("MWMT_MOCK") == "1"
	p, err := buildProvider(mock)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize MT provider")
	}

	cacheTTL, _ := strconv.Atoi(os.Getenv("MWMT_CACHE_TTL"))

	s := &server{
		orchestrator: mwmt.NewOrchestrator(mwmt.WithLogger(logger)),
		provider:     p,
		cache:        cache.NewInMemoryCache(cacheTTL),
		sourceLocale: "en",
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/preview", s.handlePreview)

	addr := os.Getenv("MWMT_LISTEN_ADDR")
	if addr == "" {
		addr = "127.0.0.1:3000"
	}

	runServer(addr, gzhttp.GzipHandler(mux), logger)
}

func runServer(addr string, handler http.Handler, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildProvider wraps the concrete MT backend in a rate limiter and a
// retrying decorator, so every server request backs off from
// transient provider failures and never
// exceeds the backend's request budget. Both decorators are no-ops
// against the mock provider beyond their own bookkeeping, so --mock
// runs exercise the same call path as a live backend.
func buildProvider(mock bool) (provider.Provider, error) {
	var p provider.Provider
	if mock {
		p = provider.NewMockProvider(provider.ModeSuffix)
	} else {
		key := os.Getenv("GOOGLE_TRANSLATE_API_KEY")
		if key == "" {
			return nil, &mwmt.ConfigError{Message: "GOOGLE_TRANSLATE_API_KEY is not set"}
		}
		p = provider.NewRestProvider(provider.RestConfig{APIKey: key})
	}

	rpm, _ := strconv.Atoi(os.Getenv("MWMT_RATE_LIMIT_RPM"))
	p = mwmt.NewRateLimitedProvider(p, mwmt.RateLimitConfig{RequestsPerMinute: rpm})
	p = mwmt.NewRetryableProvider(p, mwmt.DefaultRetryConfig())
	return p, nil
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Message == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "message and target_language are required")
		return
	}

	cacheKey := mwmt.CacheKeyExtended(mwmt.HashText(req.Message), s.sourceLocale, req.TargetLanguage, s.provider.Name())
	if cached, ok := s.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, translateResponse{Translated: cached, Source: req.Message})
		return
	}

	result, err := s.orchestrator.Suggest(r.Context(), s.sourceLocale, req.TargetLanguage, req.Key, req.Message, s.provider)
	if err != nil {
		status, msg := classifyForHTTP(err)
		s.logger.Error().Err(err).Str("key", req.Key).Msg("translate failed")
		writeError(w, status, msg)
		return
	}

	_ = s.cache.Set(cacheKey, result.Wikitext)
	writeJSON(w, http.StatusOK, translateResponse{Translated: result.Wikitext, Source: req.Message})
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	targetLocale := r.URL.Query().Get("target_language")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	result, err := s.orchestrator.Suggest(r.Context(), s.sourceLocale, targetLocale, "preview", message, s.provider)
	if err != nil {
		status, msg := classifyForHTTP(err)
		writeError(w, status, msg)
		return
	}

	nodes, err := wikitext.Parse(result.Wikitext)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to parse suggestion for preview")
		return
	}
	meta, err := preview.RenderWithMeta(nodes, targetLocale, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<div lang="%s" dir="%s" title="%s">%s</div>`, meta.Lang, meta.Direction, meta.Language, meta.HTML)
}

// classifyForHTTP maps an orchestrator error onto the HTTP status the
// external interface specifies: 400 for client errors (malformed
// input, unsupported locale), 500 for server-side failures.
func classifyForHTTP(err error) (int, string) {
	var parseErr *mwmt.ParseError
	var invalidLocale *mwmt.InvalidLocaleError
	var boundErr *mwmt.ExpansionBoundError
	if errors.As(err, &parseErr) || errors.As(err, &invalidLocale) || errors.As(err, &boundErr) {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
