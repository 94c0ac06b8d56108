package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/internal/presentation/graph"
	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// GraphURI is the resource exposing the serialized graph.
const GraphURI = "scenery://graph"

// Bot is the part of scenery.Bot the MCP tools drive.
type Bot interface {
	StartTurn(ctx context.Context, sessionID string) (*scenery.Turn, error)
	HandleTurn(ctx context.Context, sessionID string, in domain.Input) (*scenery.Turn, error)
	Current(ctx context.Context, sessionID string) (*domain.Post, *domain.State, error)
	Graph() *domain.Graph
}

var _ Bot = (*scenery.Bot)(nil)

// SessionResponse is the structured result of the session tools.
type SessionResponse struct {
	SessionID   string     `json:"session_id" jsonschema_description:"The session the posts belong to"`
	CurrentPost string     `json:"current_post" jsonschema_description:"The post the session waits on"`
	Terminated  bool       `json:"terminated" jsonschema_description:"Set once a post without rules is reached"`
	Matched     bool       `json:"matched" jsonschema_description:"False when the input resolved no rule"`
	Posts       []PostView `json:"posts" jsonschema_description:"Posts to deliver, in order"`
}

// PostView is a delivered post.
type PostView struct {
	ID      string           `json:"id"`
	Kind    domain.Kind      `json:"kind"`
	Source  string           `json:"source" jsonschema_description:"Text body, caption or media file path"`
	Items   []codec.ItemView `json:"items,omitempty" jsonschema_description:"Members of a group, each with its kind and file path or text"`
	Buttons []domain.Button  `json:"buttons,omitempty" jsonschema_description:"Buttons still pressable"`
}

// Server exposes a bot as an MCP server.
type Server struct {
	bot       Bot
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(bot Bot, opts ...Option) *Server {
	s := &Server{
		bot:       bot,
		mcpServer: server.NewMCPServer("scenery-mcp", strings.TrimSpace(scenery.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start or restart a conversation at the root post."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("send_input",
		mcp.WithDescription("Send a text reply or press a button. Exactly one of text and button must be set."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithString("text", mcp.Description("Free-form reply")),
		mcp.WithString("button", mcp.Description("Callback id of the pressed button")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleInput))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the post a conversation is waiting on."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the conversation graph as a Mermaid flowchart."),
		mcp.WithString("session_id", mcp.Description("Highlight the path of this session (optional)")),
	), s.handleGetGraph)
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	turn, err := s.bot.StartTurn(ctx, id)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return respond(id, turn), nil
}

func (s *Server) handleInput(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	text, hasText := args["text"].(string)
	button, hasButton := args["button"].(string)
	if hasText == hasButton {
		return SessionResponse{}, errors.New("exactly one of text and button is required")
	}

	in := domain.ButtonInput(button)
	if hasText {
		clean, err := runner.SanitizeInput(text)
		if err != nil {
			s.logger.Warn("MCP Input: Input rejected", "error", err, "size", len(text))
			return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		in = domain.TextInput(clean)
	}

	turn, err := s.bot.HandleTurn(ctx, id, in)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("input failed: %w", err)
	}
	return respond(id, turn), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	post, state, err := s.bot.Current(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	return respond(id, &scenery.Turn{Posts: []*domain.Post{post}, State: state}), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var overlay *graph.Overlay
	if id := request.GetString("session_id", ""); id != "" {
		_, state, err := s.bot.Current(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("session lookup failed: %v", err)), nil
		}
		overlay = &graph.Overlay{Visited: state.History, Current: state.CurrentPostID}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(s.bot.Graph(), overlay)), nil
}

func respond(id string, turn *scenery.Turn) SessionResponse {
	state := turn.State
	resp := SessionResponse{
		SessionID:   id,
		CurrentPost: state.CurrentPostID,
		Terminated:  state.Terminated,
		Matched:     len(turn.Posts) > 0,
		Posts:       make([]PostView, 0, len(turn.Posts)),
	}
	for _, p := range turn.Posts {
		v := PostView{ID: p.ID, Kind: p.Kind(), Source: p.Content.Source()}
		switch c := p.Content.(type) {
		case domain.ButtonSet:
			v.Buttons = c.Live(state.ConsumedOn(p.ID))
		case domain.Group:
			v.Items = codec.Items(c)
		}
		resp.Posts = append(resp.Posts, v)
	}
	return resp
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Conversation Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := codec.EncodePublic(s.bot.Graph())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
