package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/observability/metrics"
)

const (
	maxRequestBodyBytes = 64 << 10
	defaultStatsLimit   = 10
)

type Router struct {
	cfg      config.Config
	answerer ports.QuestionAnswerer
	chat     ports.ChatService
	stats    ports.StatsReader
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// NewRouter wires the HTTP surface. A nil stats reader disables /v1/stats.
func NewRouter(
	cfg config.Config,
	answerer ports.QuestionAnswerer,
	chat ports.ChatService,
	stats ports.StatsReader,
	opts ...Option,
) *Router {
	rt := &Router{
		cfg:      cfg,
		answerer: answerer,
		chat:     chat,
		stats:    stats,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/ask", rt.ask)
	api.HandleFunc("POST /v1/chat", rt.chatMessage)
	api.HandleFunc("GET /v1/conversations/{user_id}", rt.history)
	api.HandleFunc("DELETE /v1/conversations/{user_id}", rt.clearHistory)
	api.HandleFunc("GET /v1/stats", rt.statsSummary)
	if rt.cfg.MCPEnabled {
		api.Handle("/mcp", newMCPHandler(rt.answerer, rt.logger))
	}

	var guarded http.Handler = api
	guarded = bearerAuthMiddleware(guarded, rt.cfg.APIKey)
	guarded = mustOpenAPIValidator(rt.logger).Middleware(guarded)
	guarded = backpressureMiddleware(guarded, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	guarded = rateLimitMiddleware(guarded, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/", guarded)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler, rt.logger)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question string `json:"question"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		rt.writeDomainError(w, r, domain.WrapError(domain.ErrEmptyQuery, "ask", errors.New("question is required")))
		return
	}

	start := time.Now()
	answer := rt.answerer.ProcessQuery(r.Context(), req.Question)
	if rt.metrics != nil {
		rt.metrics.RecordAnswer("ask", answer, time.Since(start))
	}
	writeJSON(w, http.StatusOK, answer)
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (rt *Router) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	reply, err := rt.chat.Chat(r.Context(), req.UserID, req.Message)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChatReply(reply.Type)
		if reply.Type == domain.ReplyRAG || reply.Type == domain.ReplyMixed {
			rt.metrics.RecordAnswer("chat", reply.Answer, time.Since(start))
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) history(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	turns, err := rt.chat.History(r.Context(), userID)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if turns == nil {
		turns = []domain.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":       userID,
		"conversations": turns,
	})
}

func (rt *Router) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := rt.chat.ClearHistory(r.Context(), r.PathValue("user_id")); err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) statsSummary(w http.ResponseWriter, r *http.Request) {
	if rt.stats == nil {
		writeError(w, http.StatusNotFound, "analytics disabled")
		return
	}
	limit := defaultStatsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	topics, err := rt.stats.TopTopics(r.Context(), limit)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	sources, err := rt.stats.TopSources(r.Context(), limit)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"top_topics":  topics,
		"top_sources": sources,
	})
}

func (rt *Router) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is required")
		default:
			writeError(w, http.StatusBadRequest, "invalid json")
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
