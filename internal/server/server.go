package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/image-label-mcp/internal/config"
	"github.com/ironsheep/image-label-mcp/internal/fontcat"
	"github.com/ironsheep/image-label-mcp/internal/imaging"
	"github.com/ironsheep/image-label-mcp/internal/label"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Server handles MCP protocol communication
type Server struct {
	cfg    *config.Config
	cache  *imaging.ImageCache
	fonts  *fontcat.Catalog
	logger hclog.Logger

	in  io.Reader
	out io.Writer

	// mu guards compositors and serialises drawing with them.
	mu          sync.Mutex
	compositors map[compositorKey]*label.TextCompositor
}

// compositorKey identifies one font at one size under one bounds policy.
type compositorKey struct {
	font   string
	size   float64
	policy label.BoundsPolicy
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithCatalog sets the font catalog.
func WithCatalog(c *fontcat.Catalog) Option {
	return func(s *Server) {
		s.fonts = c
	}
}

// WithLogger sets the server logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:       imaging.NewImageCache(),
		logger:      hclog.NewNullLogger(),
		in:          os.Stdin,
		out:         os.Stdout,
		compositors: make(map[compositorKey]*label.TextCompositor),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.fonts == nil {
		s.fonts = fontcat.New(
			fontcat.WithLogger(s.logger.Named("fontcat")),
			fontcat.WithCacheDir(s.cfg.Font.CacheDir),
			fontcat.WithDownloadDir(s.cfg.Font.DownloadDir),
		)
	}
	return s
}

// Run serves requests until the input is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)

	defer func() {
		s.closeCompositors()
		s.cache.Clear()
	}()

	s.logger.Info("serving", "version", Version)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Trace("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-label-mcp",
				"version": Version,
			},
		},
	}
}

// withCompositor calls fn with the compositor for key, opening the font on
// first use. s.mu is held for the duration of fn.
func (s *Server) withCompositor(ctx context.Context, key compositorKey, fn func(*label.TextCompositor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.compositors[key]
	if !ok {
		h, err := s.fonts.Open(ctx, key.font, key.size)
		if err != nil {
			return err
		}
		c = label.New(h, label.WithBoundsPolicy(key.policy))
		s.compositors[key] = c
		s.logger.Debug("font opened", "font", key.font, "size", key.size, "policy", key.policy)
	}
	return fn(c)
}

func (s *Server) closeCompositors() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.compositors {
		if err := c.Font().Close(); err != nil {
			s.logger.Warn("failed to close font", "font", key.font, "error", err)
		}
		delete(s.compositors, key)
	}
}
