package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/internal/presentation/graph"
	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports"
	"github.com/aretw0/scenery/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Bot is the part of scenery.Bot the API drives.
type Bot interface {
	StartTurn(ctx context.Context, sessionID string) (*scenery.Turn, error)
	HandleTurn(ctx context.Context, sessionID string, in domain.Input) (*scenery.Turn, error)
	Current(ctx context.Context, sessionID string) (*domain.Post, *domain.State, error)
	End(ctx context.Context, sessionID string) error
	Graph() *domain.Graph
}

var _ Bot = (*scenery.Bot)(nil)

// Server exposes a bot over JSON. Delivered posts are also pushed to
// subscribers of the session event stream.
type Server struct {
	Bot     Bot
	Streams *StreamManager
	logger  *slog.Logger
	limiter *sessionLimiter
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRateLimit allows each session perSecond inputs with the given burst.
// Excess inputs are rejected with 429.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = newSessionLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewHandler creates the HTTP handler for bot.
func NewHandler(bot Bot, opts ...Option) http.Handler {
	s := &Server{
		Bot:     bot,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Post("/", s.StartSession)
		r.Get("/", s.GetSession)
		r.Delete("/", s.EndSession)
		r.Post("/input", s.PostInput)
		r.Get("/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// InputRequest is the body of POST /sessions/{id}/input.
type InputRequest struct {
	// Kind is "text" or "button".
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// PostView is a delivered post. Group content is a codec.GroupView, whose
// items carry their kind.
type PostView struct {
	ID      string          `json:"id"`
	Kind    domain.Kind     `json:"kind"`
	Content any             `json:"content"`
	Buttons []domain.Button `json:"buttons,omitempty"` // still pressable in this session
}

// SessionResponse describes a session after a request.
type SessionResponse struct {
	SessionID   string     `json:"session_id"`
	CurrentPost string     `json:"current_post"`
	Terminated  bool       `json:"terminated"`
	Matched     bool       `json:"matched"`
	Posts       []PostView `json:"posts"`
}

// StartSession handles POST /sessions/{id}.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	turn, err := s.Bot.StartTurn(r.Context(), id)
	if err != nil {
		s.fail(w, "Start", err)
		return
	}
	s.respond(w, id, turn)
}

// PostInput handles POST /sessions/{id}/input.
func (s *Server) PostInput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.limiter != nil && !s.limiter.allow(id) {
		http.Error(w, "Too many inputs", http.StatusTooManyRequests)
		return
	}

	var body InputRequest
	r.Body = http.MaxBytesReader(w, r.Body, int64(runner.MaxInputSize())+1024)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostInput: Invalid request body", "error", err)
		return
	}

	value, err := runner.SanitizeInput(body.Value)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("PostInput: Input rejected", "error", err, "size", len(body.Value))
		return
	}

	var in domain.Input
	switch body.Kind {
	case "text", "":
		in = domain.TextInput(value)
	case "button":
		in = domain.ButtonInput(value)
	default:
		http.Error(w, fmt.Sprintf("Invalid input kind %q", body.Kind), http.StatusBadRequest)
		return
	}

	turn, err := s.Bot.HandleTurn(r.Context(), id, in)
	if err != nil {
		s.fail(w, "PostInput", err)
		return
	}
	s.respond(w, id, turn)
}

// GetSession handles GET /sessions/{id}, returning the post the session
// waits on.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, state, err := s.Bot.Current(r.Context(), id)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, s.logger, SessionResponse{
		SessionID:   id,
		CurrentPost: state.CurrentPostID,
		Terminated:  state.Terminated,
		Matched:     true,
		Posts:       []PostView{view(post, state)},
	})
}

// EndSession handles DELETE /sessions/{id}.
func (s *Server) EndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Bot.End(r.Context(), id); err != nil {
		s.fail(w, "EndSession", err)
		return
	}
	if s.limiter != nil {
		s.limiter.forget(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph. format=mermaid renders a flowchart,
// highlighting the session given by the session parameter; the default is
// the serialized graph without its token.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Bot.Graph()

	if r.URL.Query().Get("format") == "mermaid" {
		var overlay *graph.Overlay
		if id := r.URL.Query().Get("session"); id != "" {
			_, state, err := s.Bot.Current(r.Context(), id)
			if err != nil {
				s.fail(w, "GetGraph", err)
				return
			}
			overlay = &graph.Overlay{Visited: state.History, Current: state.CurrentPostID}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, graph.GenerateMermaid(g, overlay))
		return
	}

	data, err := codec.EncodePublic(g)
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{
		"app":     "scenery-http",
		"version": strings.TrimSpace(scenery.Version),
	})
}

// respond renders turn against the state it produced.
func (s *Server) respond(w http.ResponseWriter, id string, turn *scenery.Turn) {
	state := turn.State
	resp := SessionResponse{
		SessionID:   id,
		CurrentPost: state.CurrentPostID,
		Terminated:  state.Terminated,
		Matched:     len(turn.Posts) > 0,
		Posts:       make([]PostView, 0, len(turn.Posts)),
	}
	for _, p := range turn.Posts {
		resp.Posts = append(resp.Posts, view(p, state))
	}

	if len(resp.Posts) > 0 {
		if data, err := json.Marshal(resp.Posts); err == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}
	writeJSON(w, s.logger, resp)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrLockAcquire):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func view(p *domain.Post, state *domain.State) PostView {
	v := PostView{ID: p.ID, Kind: p.Kind(), Content: codec.View(p.Content)}
	if set, ok := p.Content.(domain.ButtonSet); ok {
		v.Buttons = set.Live(state.ConsumedOn(p.ID))
	}
	return v
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
