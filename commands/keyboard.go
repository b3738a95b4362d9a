package commands

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/mobile-next/wintest/desktop"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

// KeyboardPressRequest represents the parameters for a key press
type KeyboardPressRequest struct {
	ProcessName string  `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	Key         string  `json:"key" jsonschema:"key name, e.g. a, 7, f5, enter, tab, esc, ctrl, shift, alt, win"`
	Presses     int     `json:"presses,omitempty" jsonschema:"number of presses, default 1"`
	Interval    float64 `json:"interval,omitempty" jsonschema:"seconds between presses"`
}

// KeyboardToggleRequest represents the parameters for key down and key up
type KeyboardToggleRequest struct {
	ProcessName string `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	Key         string `json:"key" jsonschema:"key name, e.g. ctrl, shift, alt, win, a"`
}

// KeyboardTypeRequest represents the parameters for typing text
type KeyboardTypeRequest struct {
	ProcessName string   `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	Text        string   `json:"text" jsonschema:"text to type"`
	Interval    *float64 `json:"interval,omitempty" jsonschema:"seconds between characters, default 0.01"`
}

type KeyboardResult struct {
	Message string `json:"message"`
	Window  string `json:"window"`
}

// KeyboardPress taps key presses times in the target window.
func (e *Executor) KeyboardPress(ctx context.Context, req KeyboardPressRequest) *CommandResponse {
	key, err := desktop.ParseKey(req.Key)
	if err != nil {
		return NewErrorResponse(err)
	}

	interval, err := e.delay("interval", req.Interval)
	if err != nil {
		return NewErrorResponse(err)
	}

	presses, err := e.repeat("presses", req.Presses, interval)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, gate.ToolKeyboardPress, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		for i := 0; i < presses; i++ {
			if i > 0 && interval > 0 {
				if err := e.sleep(ctx, interval); err != nil {
					return err
				}
			}
			if err := e.desktop.Input.KeyTap(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(KeyboardResult{
		Message: fmt.Sprintf("Pressed '%s' %d time(s)", req.Key, presses),
		Window:  target.String(),
	})
}

// KeyboardDown holds key down in the target window.
func (e *Executor) KeyboardDown(ctx context.Context, req KeyboardToggleRequest) *CommandResponse {
	return e.keyboardToggle(ctx, gate.ToolKeyboardDown, req, true)
}

// KeyboardUp releases key in the target window.
func (e *Executor) KeyboardUp(ctx context.Context, req KeyboardToggleRequest) *CommandResponse {
	return e.keyboardToggle(ctx, gate.ToolKeyboardUp, req, false)
}

func (e *Executor) keyboardToggle(ctx context.Context, tool gate.Tool, req KeyboardToggleRequest, down bool) *CommandResponse {
	key, err := desktop.ParseKey(req.Key)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, tool, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		return e.desktop.Input.KeyToggle(key, down)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	action := "Released"
	if down {
		action = "Holding"
	}
	return NewSuccessResponse(KeyboardResult{
		Message: fmt.Sprintf("%s '%s'", action, req.Key),
		Window:  target.String(),
	})
}

// KeyboardType types text into the target window.
func (e *Executor) KeyboardType(ctx context.Context, req KeyboardTypeRequest) *CommandResponse {
	if req.Text == "" {
		return NewErrorResponse(invalidParams("text is required"))
	}
	if !utf8.ValidString(req.Text) {
		return NewErrorResponse(invalidParams("text is not valid UTF-8"))
	}

	interval, err := e.optionalDelay("interval", req.Interval, e.cfg.Input.TypeInterval)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, gate.ToolKeyboardType, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		return e.desktop.Input.TypeText(ctx, req.Text, interval)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(KeyboardResult{
		Message: fmt.Sprintf("Typed %d character(s)", utf8.RuneCountInString(req.Text)),
		Window:  target.String(),
	})
}
