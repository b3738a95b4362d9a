// Package mcpserver exposes the automation tools over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mobile-next/wintest/commands"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/utils"
)

const serverName = "wintest"

const instructions = `Windows desktop automation tools.

Keyboard and mouse tools always bring the window of process_name to the
foreground before injecting input, so pass the process that should receive
the input on every call. app_launch does not focus the new window.
Coordinates are absolute screen pixels. Capture tools never change focus,
except window_capture_foreground.`

// NewServer creates an MCP server with every tool bound to e.
func NewServer(e *commands.Executor, version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, &mcp.ServerOptions{
		Instructions: instructions,
	})

	addTool(s, e, gate.ToolScreenshotCapture, (*commands.Executor).ScreenshotCapture)
	addTool(s, e, gate.ToolScreenshotRegion, (*commands.Executor).ScreenshotRegion)
	addTool(s, e, gate.ToolWindowCaptureBackground, (*commands.Executor).WindowCaptureBackground)
	addTool(s, e, gate.ToolWindowCaptureForeground, (*commands.Executor).WindowCaptureForeground)
	addTool(s, e, gate.ToolWindowGetRect, (*commands.Executor).WindowGetRect)
	addTool(s, e, gate.ToolWindowActivate, (*commands.Executor).WindowActivate)
	addTool(s, e, gate.ToolAppLaunch, (*commands.Executor).AppLaunch)
	addTool(s, e, gate.ToolAppTerminate, (*commands.Executor).AppTerminate)
	addTool(s, e, gate.ToolAppListRunning, (*commands.Executor).AppListRunning)
	addTool(s, e, gate.ToolGetScreenSize, (*commands.Executor).GetScreenSize)
	addTool(s, e, gate.ToolKeyboardPress, (*commands.Executor).KeyboardPress)
	addTool(s, e, gate.ToolKeyboardDown, (*commands.Executor).KeyboardDown)
	addTool(s, e, gate.ToolKeyboardUp, (*commands.Executor).KeyboardUp)
	addTool(s, e, gate.ToolKeyboardType, (*commands.Executor).KeyboardType)
	addTool(s, e, gate.ToolMouseMove, (*commands.Executor).MouseMove)
	addTool(s, e, gate.ToolMouseClick, (*commands.Executor).MouseClick)
	addTool(s, e, gate.ToolMouseDown, (*commands.Executor).MouseDown)
	addTool(s, e, gate.ToolMouseUp, (*commands.Executor).MouseUp)
	addTool(s, e, gate.ToolMouseScroll, (*commands.Executor).MouseScroll)
	addTool(s, e, gate.ToolMouseGetPosition, (*commands.Executor).MouseGetPosition)

	return s
}

func addTool[In any](s *mcp.Server, e *commands.Executor, t gate.Tool, fn func(*commands.Executor, context.Context, In) *commands.CommandResponse) {
	tool := &mcp.Tool{
		Name:        t.Name(),
		Description: commands.Describe(t),
		Annotations: annotations(t),
	}

	mcp.AddTool(s, tool, func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		utils.Verbose("mcp call %s", t.Name())
		return toResult(fn(e, ctx, in)), nil, nil
	})
}

func annotations(t gate.Tool) *mcp.ToolAnnotations {
	class, _ := gate.Classify(t)

	a := &mcp.ToolAnnotations{Title: t.Name()}
	switch class {
	case gate.ClassReadOnly:
		a.ReadOnlyHint = true
		a.IdempotentHint = true
	case gate.ClassSelfActivating:
		a.DestructiveHint = boolPtr(false)
		a.IdempotentHint = true
	case gate.ClassLifecycle:
		a.DestructiveHint = boolPtr(t == gate.ToolAppTerminate)
	case gate.ClassWrite:
		a.DestructiveHint = boolPtr(false)
	}
	return a
}

func boolPtr(b bool) *bool {
	return &b
}

// toResult converts a command response into tool content. Errors become
// results flagged IsError, with the error code leading the message.
func toResult(resp *commands.CommandResponse) *mcp.CallToolResult {
	if resp.Status != "ok" {
		msg := resp.Error
		if resp.Code != "" {
			msg = fmt.Sprintf("%s: %s", resp.Code, resp.Error)
		}
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		}
	}

	if shot, ok := resp.Data.(commands.ScreenshotResponse); ok {
		image := shot.Image
		shot.Data = ""
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.ImageContent{Data: image, MIMEType: shot.MimeType},
				&mcp.TextContent{Text: marshalText(shot)},
			},
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: marshalText(resp.Data)}},
	}
}

func marshalText(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Run serves the tools on t until ctx is done or the client disconnects.
func Run(ctx context.Context, e *commands.Executor, version string, t mcp.Transport) error {
	s := NewServer(e, version)
	utils.Info("MCP server %s ready", version)
	return s.Run(ctx, t)
}

// HTTPHandler serves the tools over the streamable HTTP transport. All
// sessions share one server and therefore one executor.
func HTTPHandler(e *commands.Executor, version string) http.Handler {
	s := NewServer(e, version)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}
