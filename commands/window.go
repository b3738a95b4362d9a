package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

// WindowRequest represents the parameters for window queries
type WindowRequest struct {
	ProcessName string `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the process name"`
}

// WindowActivateRequest represents the parameters for activating a window.
// WaitTime is the pause after activation, in seconds.
type WindowActivateRequest struct {
	ProcessName string   `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the process name"`
	WaitTime    *float64 `json:"wait_time,omitempty" jsonschema:"seconds to wait after activation, default 0.5"`
}

type WindowResult struct {
	Message string       `json:"message"`
	Window  types.Window `json:"window"`
	Rect    *types.Rect  `json:"rect,omitempty"`
}

// WindowGetRect reports a window's position and size without activating it.
func (e *Executor) WindowGetRect(ctx context.Context, req WindowRequest) *CommandResponse {
	target, err := e.requireTarget(req.ProcessName)
	if err != nil {
		return NewErrorResponse(err)
	}

	var window types.Window
	var rect types.Rect
	err = e.run(ctx, gate.ToolWindowGetRect, target, func(ctx context.Context, _ types.Window) error {
		w, err := e.resolve(ctx, target)
		if err != nil {
			return err
		}
		window = w
		rect, err = e.desktop.Capture.WindowRect(w)
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(WindowResult{
		Message: fmt.Sprintf("%s is %dx%d at (%d,%d)", window, rect.Width, rect.Height, rect.X, rect.Y),
		Window:  window,
		Rect:    &rect,
	})
}

// WindowActivate brings a window to the foreground and waits for it to
// settle.
func (e *Executor) WindowActivate(ctx context.Context, req WindowActivateRequest) *CommandResponse {
	target, err := e.requireTarget(req.ProcessName)
	if err != nil {
		return NewErrorResponse(err)
	}

	wait, err := e.optionalDelay("wait_time", req.WaitTime, e.cfg.Apps.ActivateWait)
	if err != nil {
		return NewErrorResponse(err)
	}

	var window types.Window
	err = e.run(ctx, gate.ToolWindowActivate, target, func(ctx context.Context, _ types.Window) error {
		w, err := e.focus(ctx, target, wait)
		window = w
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(WindowResult{
		Message: fmt.Sprintf("Activated %s", window),
		Window:  window,
	})
}
