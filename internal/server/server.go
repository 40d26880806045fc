// Package server implements the campaign generation service: the HTTP
// contract consumed by the client, backed by the orchestrator workflow.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/smileynet/campaignmgr/internal/api"
	"github.com/smileynet/campaignmgr/internal/orchestrator"
)

// Messages returned by the service.
const (
	RootMessage      = "Campaign Manager Backend API"
	HelloMessage     = "Backend is running!"
	ErrBriefRequired = "intent_brief is required"
)

const maxRequestBytes = 1 << 20

// Workflow runs campaign generation for one brief.
type Workflow interface {
	Run(ctx context.Context, brief string) (orchestrator.State, error)
}

// Server serves the campaign HTTP API.
type Server struct {
	cfg      Config
	workflow Workflow
	logger   *slog.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server running wf for each campaign request.
func New(cfg Config, wf Workflow, opts ...Option) *Server {
	s := &Server{cfg: cfg, workflow: wf}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(CORS(s.cfg.AllowedOrigins))

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
	}

	r.Get("/", s.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Get("/hello", s.handleHello)
		r.With(RateLimit(limiter)).Post("/run-campaign", s.handleRunCampaign)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"client_request_id", r.Header.Get(api.RequestIDHeader),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": RootMessage,
		"status":  "active",
	})
}

func (s *Server) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.HelloResponse{Message: HelloMessage})
}

func (s *Server) handleRunCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntentBrief *string `json:"intent_brief"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil || req.IntentBrief == nil {
		writeError(w, http.StatusBadRequest, ErrBriefRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.WorkflowTimeout)
	defer cancel()

	state, err := s.workflow.Run(ctx, *req.IntentBrief)
	if err != nil {
		s.logger.Error("campaign workflow failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newCampaignResponse(state))
}

// campaignResponse is the run-campaign body. Segments are sent as a list.
type campaignResponse struct {
	IntentBrief      string            `json:"intent_brief"`
	AudienceSegments []string          `json:"audience_segments"`
	Content          []api.ContentItem `json:"content"`
	ReviewTask       *reviewTask       `json:"review_task"`
}

type reviewTask struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Details string `json:"details"`
	Status  string `json:"status"`
}

func newCampaignResponse(st orchestrator.State) campaignResponse {
	resp := campaignResponse{
		IntentBrief:      st.IntentBrief,
		AudienceSegments: st.AudienceSegments,
		Content:          make([]api.ContentItem, 0, len(st.Content)),
	}
	if resp.AudienceSegments == nil {
		resp.AudienceSegments = []string{}
	}
	for _, item := range st.Content {
		resp.Content = append(resp.Content, api.ContentItem{Segment: item.Segment, Copy: item.Copy})
	}
	if t := st.ReviewTask; t != nil {
		resp.ReviewTask = &reviewTask{ID: t.ID, Title: t.Title, Details: t.Details, Status: string(t.Status)}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
