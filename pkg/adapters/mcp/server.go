// Package mcp exposes the bot as a Model Context Protocol server so AI
// agents can drive conversations as tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/parleybot/parley"
	"github.com/parleybot/parley/pkg/domain"
)

// ChatResponse is the structured result of the chat tool.
type ChatResponse struct {
	SessionID        string           `json:"session_id" jsonschema_description:"The session this turn belongs to; pass it back on the next call"`
	Messages         []domain.Message `json:"messages" jsonschema_description:"Named messages emitted this turn"`
	Text             string           `json:"text" jsonschema_description:"All message texts joined for single-channel rendering"`
	RecognizedIntent string           `json:"recognized_intent,omitempty" jsonschema_description:"Top-ranked intent recognized this turn"`
	CompletedIntent  string           `json:"completed_intent,omitempty" jsonschema_description:"Intent completed this turn, if any"`
	Ended            bool             `json:"ended" jsonschema_description:"True when the conversation reached its terminal state"`
}

// Server wraps a Bot and exposes it as an MCP Server.
type Server struct {
	bot       *parley.Bot
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance for the bot.
func NewServer(bot *parley.Bot) *Server {
	s := &Server{
		bot:       bot,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
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
	// TOOL: chat
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send one turn of conversation to the bot. Omit session_id to start a new conversation; reuse the returned session_id to continue it."),
		mcp.WithString("session_id", mcp.Description("Session to continue (optional; a new one is created when omitted)")),
		mcp.WithString("text", mcp.Description("User utterance, routed through the recognizer")),
		mcp.WithString("intent", mcp.Description("Intent name to inject directly, bypassing recognition (alternative to text)")),
		mcp.WithString("slots", mcp.Description("JSON object of entity type to value, pre-filling slots for an injected intent (optional)")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	// TOOL: reset_session
	resetTool := mcp.NewTool("reset_session",
		mcp.WithDescription("Delete a session so the next chat call starts fresh."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to delete")),
	)
	s.mcpServer.AddTool(resetTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := request.GetString("session_id", "")
		if sessionID == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		if err := s.bot.Reset(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("session %s reset", sessionID)), nil
	})
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResponse, error) {
	sessionID, _ := args["session_id"].(string)
	text, _ := args["text"].(string)
	intentName, _ := args["intent"].(string)

	var input domain.Input
	switch {
	case intentName != "":
		slots := map[string]string{}
		if slotsStr, ok := args["slots"].(string); ok && slotsStr != "" {
			if err := json.Unmarshal([]byte(slotsStr), &slots); err != nil {
				return ChatResponse{}, fmt.Errorf("slots rejected: %w", err)
			}
		}
		input = domain.IntentInput(intentName, slots)
	case text != "":
		input = domain.TextInput(text)
	default:
		return ChatResponse{}, fmt.Errorf("either text or intent is required")
	}

	reply, err := s.bot.Converse(ctx, sessionID, input)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("turn failed: %w", err)
	}

	return ChatResponse{
		SessionID:        reply.SessionID,
		Messages:         reply.Messages,
		Text:             reply.Text(),
		RecognizedIntent: reply.RecognizedIntent,
		CompletedIntent:  reply.CompletedIntent,
		Ended:            reply.Ended,
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: parley://definition
	s.mcpServer.AddResource(mcp.NewResource("parley://definition", "Bot Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.bot.Config())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal bot definition: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "parley://definition",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
