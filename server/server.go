package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mobile-next/wintest/commands"
	"github.com/mobile-next/wintest/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second

	// ToolCallTimeout bounds writing a /rpc response. A tool call may run,
	// or wait behind other calls, far longer than WriteTimeout.
	ToolCallTimeout = 10 * time.Minute
)

const (
	errTitleParseError     = "Parse error"
	errTitleInvalidReq     = "Invalid Request"
	errTitleMethodNotFound = "Method not found"
	errTitleServerError    = "Server error"
	errTitleInvalidParams  = "Invalid params"

	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
	errMsgTextOnly       = "only text messages accepted for requests"
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Options configure a Server.
type Options struct {
	// Listen is host:port or a bare port.
	Listen string

	EnableCORS bool

	// Token, when set, must be sent as "Authorization: Bearer <token>" on
	// /rpc, /ws and /mcp.
	Token string

	// MCP is mounted at /mcp when set.
	MCP http.Handler

	// WriteTimeout overrides the default WriteTimeout for endpoints that
	// do not manage their own deadline.
	WriteTimeout time.Duration
}

// Server exposes the executor's tools over JSON-RPC 2.0.
type Server struct {
	executor *commands.Executor
	opts     Options

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

func New(e *commands.Executor, opts Options) *Server {
	return &Server{
		executor: e,
		opts:     opts,
		shutdown: make(chan struct{}),
	}
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware rejects requests without the bearer token.
func authMiddleware(token string, next http.Handler) http.Handler {
	expected := []byte("Bearer " + token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="wintest"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extendWriteDeadline moves the connection's write deadline d into the
// future before calling next. A zero d removes the deadline.
func extendWriteDeadline(d time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var deadline time.Time
		if d > 0 {
			deadline = time.Now().Add(d)
		}
		_ = http.NewResponseController(w).SetWriteDeadline(deadline)
		next.ServeHTTP(w, r)
	})
}

// callTimeout is the write deadline of a /rpc request.
func (s *Server) callTimeout() time.Duration {
	d := ToolCallTimeout
	if budget := 4 * s.executor.Config().Input.MaxDelay; budget > d {
		d = budget
	}
	return d
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	protect := func(h http.Handler) http.Handler {
		if s.opts.Token == "" {
			return h
		}
		return authMiddleware(s.opts.Token, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", sendBanner)
	mux.Handle("/rpc", protect(extendWriteDeadline(s.callTimeout(), http.HandlerFunc(s.handleJSONRPC))))
	mux.Handle("/ws", protect(http.HandlerFunc(s.handleWebSocket)))
	if s.opts.MCP != nil {
		// streamable HTTP keeps streams open for the whole session
		mux.Handle("/mcp", protect(extendWriteDeadline(0, s.opts.MCP)))
	}

	if s.opts.EnableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// ListenAndServe runs until ctx is done or a client calls server.shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr, err := utils.NormalizeListenAddr(s.opts.Listen)
	if err != nil {
		return err
	}

	writeTimeout := s.opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = WriteTimeout
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		utils.Info("Stopping server: %v", ctx.Err())
	case <-s.shutdown:
		utils.Info("Shutdown requested by client")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Done is closed once a client requested shutdown.
func (s *Server) Done() <-chan struct{} {
	return s.shutdown
}

func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
	})
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if rpcErr := validateRequest(req); rpcErr != nil {
		sendJSONRPCError(w, rpcErr.id, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Verbose("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, rpcErr := s.execute(r.Context(), req.Method, req.Params)
	if rpcErr != nil {
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

// rpcError is a JSON-RPC error object before encoding.
type rpcError struct {
	id      interface{}
	code    int
	message string
	data    interface{}
}

func validateRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{id: req.ID, code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgInvalidJSONRPC}
	}
	if req.ID == nil {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgIDRequired}
	}
	if req.Method == "" {
		return &rpcError{id: req.ID, code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgMethodRequired}
	}
	return nil
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
