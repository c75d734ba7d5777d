package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/teller"
	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine is the part of the teller engine exposed to MCP clients.
type Engine interface {
	ports.TurnProcessor
	SimulateLoan(ctx context.Context, amount float64, years int) (domain.LoanSimulation, error)
}

// ChatArgs are the arguments of the chat tool.
type ChatArgs struct {
	SessionID string `json:"session_id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"message"`
}

// SimulateLoanArgs are the arguments of the simulate_loan tool.
type SimulateLoanArgs struct {
	Amount float64 `json:"amount"`
	Years  int     `json:"years"`
}

// Server wraps the Teller Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("teller-mcp", strings.TrimSpace(teller.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send a customer message to the banking assistant and get its reply. "+
			"Reuse the same session_id to continue a conversation."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The customer's message, in French")),
		mcp.WithString("session_id", mcp.Description("Conversation id (optional; defaults to one per customer)")),
		mcp.WithNumber("user_id", mcp.Description("Authenticated customer id (optional; 0 = anonymous)")),
		mcp.WithOutputSchema[domain.TurnResult](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	loanTool := mcp.NewTool("simulate_loan",
		mcp.WithDescription("Compute the monthly payment and total cost of a fixed-rate loan in TND."),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Principal in TND")),
		mcp.WithNumber("years", mcp.Required(), mcp.Description("Duration in years (1-30)")),
		mcp.WithOutputSchema[domain.LoanSimulation](),
	)
	s.mcpServer.AddTool(loanTool, mcp.NewStructuredToolHandler(s.handleSimulateLoan))
}

func (s *Server) handleChat(ctx context.Context, _ mcp.CallToolRequest, args ChatArgs) (domain.TurnResult, error) {
	msg := domain.Message{SessionID: args.SessionID, UserID: args.UserID, Text: args.Message}
	res, err := s.engine.ProcessMessage(ctx, msg)
	if err != nil {
		s.logger.Error("MCP Chat: turn failed", "session_id", teller.SessionKey(msg), "error", err)
		return domain.TurnResult{}, fmt.Errorf("chat failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleSimulateLoan(ctx context.Context, _ mcp.CallToolRequest, args SimulateLoanArgs) (domain.LoanSimulation, error) {
	sim, err := s.engine.SimulateLoan(ctx, args.Amount, args.Years)
	if err != nil {
		return domain.LoanSimulation{}, fmt.Errorf("simulation rejected: %w", err)
	}
	return sim, nil
}

func (s *Server) registerResources() {
	s.addJSONResource("teller://faq", "Frequently Asked Questions", func() any { return domain.FAQ() })
	s.addJSONResource("teller://loan-rates", "Published Loan Rates", func() any { return domain.LoanRates })
}

func (s *Server) addJSONResource(uri, name string, content func() any) {
	s.mcpServer.AddResource(mcp.NewResource(uri, name,
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return readJSONResource(uri, content())
	})
}

func readJSONResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
