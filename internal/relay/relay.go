// Package relay forwards translation requests to the upstream provider with
// a server-held credential. It is a pass-through: no caller authentication,
// no rate limiting, no retries.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultUpstreamURL is the DeepL translate endpoint.
const DefaultUpstreamURL = "https://api.deepl.com/v2/translate"

// Config holds the relay settings.
type Config struct {
	Addr        string        `mapstructure:"addr"`
	APIKey      string        `mapstructure:"api_key"`
	UpstreamURL string        `mapstructure:"upstream_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Server is the relay HTTP service.
type Server struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	router *chi.Mux
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	HasAPIKey bool   `json:"hasApiKey"`
}

// New validates cfg and builds the router.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("DEEPL_API_KEY is not set")
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = DefaultUpstreamURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/translate", s.handleTranslate)
	r.Get("/health", s.handleHealth)
	s.router = r

	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("translation relay listening",
			"addr", s.cfg.Addr, "health", "GET /health", "translate", "POST /translate")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("translation relay shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	if req.Text == "" || req.TargetLang == "" {
		writeError(w, http.StatusBadRequest, "Missing text or target_lang parameter")
		return
	}

	log := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	log.Info("translating", "target_lang", req.TargetLang, "text", snippet(req.Text, 50))

	form := url.Values{}
	form.Set("auth_key", s.cfg.APIKey)
	form.Set("text", req.Text)
	form.Set("target_lang", req.TargetLang)

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.cfg.UpstreamURL, strings.NewReader(form.Encode()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	upReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(upReq)
	if err != nil {
		log.Error("upstream request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read upstream response", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("upstream error", "status", resp.StatusCode, "body", string(body))
		writeError(w, resp.StatusCode, string(body))
		return
	}

	log.Info("translation successful")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Message:   "DeepL Proxy Server is running",
		HasAPIKey: s.cfg.APIKey != "",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
