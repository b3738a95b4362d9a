package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mobile-next/wintest/commands"
	"github.com/mobile-next/wintest/config"
	"github.com/mobile-next/wintest/desktop/desktoptest"
	"github.com/mobile-next/wintest/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notepadProcess = types.ProcessInfo{PID: 42, Name: "notepad.exe"}

func newTestServer(t *testing.T, f *desktoptest.Fake, opts Options) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Capture.OutputDir = ""
	e, err := commands.NewExecutor(f.Desktop(), cfg, commands.WithSleeper(f.Sleep))
	require.NoError(t, err)

	return New(e, opts)
}

func postRPC(t *testing.T, h http.Handler, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeRPC(t *testing.T, w *httptest.ResponseRecorder) JSONRPCResponse {
	t.Helper()

	var resp JSONRPCResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func errorMapOf(t *testing.T, resp JSONRPCResponse) map[string]interface{} {
	t.Helper()

	require.NotNil(t, resp.Error, "Expected error in response")
	errorMap, ok := resp.Error.(map[string]interface{})
	require.True(t, ok, "Expected error to be map, got %T", resp.Error)
	return errorMap
}

// TestSendBanner tests the banner/root endpoint handler directly
func TestSendBanner(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	sendBanner(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "ok", data["status"])
}

// TestRPCEndpointMethods tests HTTP method handling for /rpc endpoint
func TestRPCEndpointMethods(t *testing.T) {
	s := newTestServer(t, desktoptest.New(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// TestJSONRPCValidation tests JSON-RPC request validation
func TestJSONRPCValidation(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedData string
	}{
		{
			name:         "Empty POST body should return parse error",
			body:         "",
			expectedCode: ErrCodeParseError,
			expectedData: errMsgParseError,
		},
		{
			name:         "Invalid JSON should return parse error",
			body:         `{invalid json}`,
			expectedCode: ErrCodeParseError,
			expectedData: errMsgParseError,
		},
		{
			name:         "Invalid jsonrpc version should return error",
			body:         `{"jsonrpc":"1.0","method":"get_screen_size","id":1}`,
			expectedCode: ErrCodeInvalidRequest,
			expectedData: errMsgInvalidJSONRPC,
		},
		{
			name:         "Missing id field should return error",
			body:         `{"jsonrpc":"2.0","method":"get_screen_size","params":{}}`,
			expectedCode: ErrCodeInvalidRequest,
			expectedData: errMsgIDRequired,
		},
		{
			name:         "Missing method should return error",
			body:         `{"jsonrpc":"2.0","id":1}`,
			expectedCode: ErrCodeInvalidRequest,
			expectedData: errMsgMethodRequired,
		},
		{
			name:         "Unknown method should return method not found",
			body:         `{"jsonrpc":"2.0","method":"io_tap","id":1}`,
			expectedCode: ErrCodeMethodNotFound,
			expectedData: "Method 'io_tap' not found",
		},
	}

	s := newTestServer(t, desktoptest.New(), Options{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRPC(t, s.Handler(), tt.body)
			assert.Equal(t, 200, w.Code)

			resp := decodeRPC(t, w)
			assert.Equal(t, "2.0", resp.JSONRPC)

			errorMap := errorMapOf(t, resp)
			assert.Equal(t, float64(tt.expectedCode), errorMap["code"])
			assert.Equal(t, tt.expectedData, errorMap["data"])
		})
	}
}

func TestRPC_ToolCallActivatesBeforeTyping(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	s := newTestServer(t, f, Options{})

	w := postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"keyboard_type","params":{"process_name":"notepad","text":"hi"},"id":7}`)
	resp := decodeRPC(t, w)

	require.Nil(t, resp.Error)
	assert.Equal(t, float64(7), resp.ID)

	activate := f.Rec.Index("activate 42")
	typing := f.Rec.Index(`type "hi"`)
	require.NotEqual(t, -1, activate)
	assert.Less(t, activate, typing)
}

func TestRPC_ToolErrorsCarryCode(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		rpcCode     int
		toolErrCode string
	}{
		{
			name:        "window not found",
			body:        `{"jsonrpc":"2.0","method":"window_activate","params":{"process_name":"ghost_process"},"id":1}`,
			rpcCode:     ErrCodeServerError,
			toolErrCode: "WINDOW_NOT_FOUND",
		},
		{
			name:        "invalid params",
			body:        `{"jsonrpc":"2.0","method":"keyboard_press","params":{"process_name":"notepad","key":"hyperspace"},"id":1}`,
			rpcCode:     ErrCodeInvalidParams,
			toolErrCode: "INVALID_PARAMS",
		},
		{
			name:        "malformed params",
			body:        `{"jsonrpc":"2.0","method":"mouse_move","params":{"x":"left"},"id":1}`,
			rpcCode:     ErrCodeInvalidParams,
			toolErrCode: "INVALID_PARAMS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := desktoptest.New(notepadProcess)
			s := newTestServer(t, f, Options{})

			errorMap := errorMapOf(t, decodeRPC(t, postRPC(t, s.Handler(), tt.body)))
			assert.Equal(t, float64(tt.rpcCode), errorMap["code"])

			data, ok := errorMap["data"].(map[string]interface{})
			require.True(t, ok, "Expected data to be map, got %T", errorMap["data"])
			assert.Equal(t, tt.toolErrCode, data["code"])
			assert.NotEmpty(t, data["message"])
			assert.Equal(t, 0, f.Rec.Count("activate"))
		})
	}
}

func TestRPC_ToolsList(t *testing.T) {
	s := newTestServer(t, desktoptest.New(), Options{})

	resp := decodeRPC(t, postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"tools.list","id":1}`))
	require.Nil(t, resp.Error)

	list, ok := resp.Result.([]interface{})
	require.True(t, ok, "Expected list, got %T", resp.Result)
	assert.Len(t, list, len(commands.ListTools()))
}

func TestRPC_Shutdown(t *testing.T) {
	s := newTestServer(t, desktoptest.New(), Options{})

	resp := decodeRPC(t, postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"server.shutdown","id":1}`))
	require.Nil(t, resp.Error)

	select {
	case <-s.Done():
	default:
		t.Fatal("shutdown was not requested")
	}

	// a second request must not panic on the closed channel
	resp = decodeRPC(t, postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"server.shutdown","id":2}`))
	assert.Nil(t, resp.Error)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"valid token", "Bearer s3cret", http.StatusOK},
	}

	s := newTestServer(t, desktoptest.New(), Options{Token: "s3cret"})
	body := `{"jsonrpc":"2.0","method":"get_screen_size","id":1}`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.header == "" {
				w = postRPC(t, s.Handler(), body)
			} else {
				w = postRPC(t, s.Handler(), body, "Authorization", tt.header)
			}
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("banner stays public", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMCPMount(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	s := newTestServer(t, desktoptest.New(), Options{MCP: mcp})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

// TestCORSMiddleware tests the CORS middleware functionality
func TestCORSMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test"))
	})

	corsHandler := corsMiddleware(testHandler)

	tests := []struct {
		name   string
		method string
	}{
		{"GET request", "GET"},
		{"POST request", "POST"},
		{"OPTIONS request", "OPTIONS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			w := httptest.NewRecorder()

			corsHandler.ServeHTTP(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

func freePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestListenAndServe_StopsOnShutdownRequest(t *testing.T) {
	addr := freePort(t)
	s := newTestServer(t, desktoptest.New(), Options{Listen: addr})

	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(context.Background())
	}()

	body := []byte(`{"jsonrpc":"2.0","method":"server.shutdown","id":1}`)
	require.Eventually(t, func() bool {
		resp, err := http.Post("http://"+addr+"/rpc", "application/json", bytes.NewReader(body))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListenAndServe_StopsOnContextCancel(t *testing.T) {
	addr := freePort(t)
	s := newTestServer(t, desktoptest.New(), Options{Listen: addr})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func startServer(t *testing.T, s *Server, addr string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 5*time.Second, 50*time.Millisecond)
}

func TestListenAndServe_ToolCallOutlivesWriteTimeout(t *testing.T) {
	addr := freePort(t)
	f := desktoptest.New()

	// real waits, so app_launch's wait_time outlasts the write timeout
	e, err := commands.NewExecutor(f.Desktop(), config.Default())
	require.NoError(t, err)
	s := New(e, Options{Listen: addr, WriteTimeout: 100 * time.Millisecond})
	startServer(t, s, addr)

	body := []byte(`{"jsonrpc":"2.0","method":"app_launch","params":{"app_path":"notepad.exe","wait_time":0.5},"id":7}`)
	resp, err := http.Post("http://"+addr+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	assert.Nil(t, rpcResp.Error)
	assert.Equal(t, float64(7), rpcResp.ID)

	result, ok := rpcResp.Result.(map[string]interface{})
	require.True(t, ok, "Expected result to be map, got %T", rpcResp.Result)
	assert.Contains(t, result["message"], "Launched notepad.exe")
	assert.Equal(t, []string{"launch notepad.exe"}, f.Rec.Calls())
}

func TestListenAndServe_MCPStreamHasNoWriteDeadline(t *testing.T) {
	addr := freePort(t)
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("event: message\n\n"))
	})
	s := newTestServer(t, desktoptest.New(), Options{Listen: addr, MCP: slow, WriteTimeout: 100 * time.Millisecond})
	startServer(t, s, addr)

	resp, err := http.Get("http://" + addr + "/mcp")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "event: message\n\n", string(data))
}
