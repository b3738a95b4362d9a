package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/wintest/desktop"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

// MouseMoveRequest represents the parameters for moving the cursor
type MouseMoveRequest struct {
	ProcessName string  `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	X           int     `json:"x" jsonschema:"absolute screen x coordinate"`
	Y           int     `json:"y" jsonschema:"absolute screen y coordinate"`
	Duration    float64 `json:"duration,omitempty" jsonschema:"seconds the move should take, 0 jumps"`
}

// MouseClickRequest represents the parameters for a click. Without x and y
// the click happens at the current cursor position.
type MouseClickRequest struct {
	ProcessName string  `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	X           *int    `json:"x,omitempty" jsonschema:"absolute screen x coordinate, defaults to the cursor position"`
	Y           *int    `json:"y,omitempty" jsonschema:"absolute screen y coordinate, defaults to the cursor position"`
	Button      string  `json:"button,omitempty" jsonschema:"left (default), right, middle, mouse4 or mouse5"`
	Clicks      int     `json:"clicks,omitempty" jsonschema:"number of clicks, default 1"`
	Interval    float64 `json:"interval,omitempty" jsonschema:"seconds between clicks"`
}

// MouseButtonRequest represents the parameters for mouse down and mouse up
type MouseButtonRequest struct {
	ProcessName string `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	X           *int   `json:"x,omitempty" jsonschema:"absolute screen x coordinate to move to first"`
	Y           *int   `json:"y,omitempty" jsonschema:"absolute screen y coordinate to move to first"`
	Button      string `json:"button,omitempty" jsonschema:"left (default), right, middle, mouse4 or mouse5"`
}

// MouseScrollRequest represents the parameters for scrolling. Positive
// clicks scroll up.
type MouseScrollRequest struct {
	ProcessName string `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the target process name; the window is activated first"`
	Clicks      int    `json:"clicks" jsonschema:"wheel clicks, positive scrolls up and negative scrolls down"`
	X           *int   `json:"x,omitempty" jsonschema:"absolute screen x coordinate to move to first"`
	Y           *int   `json:"y,omitempty" jsonschema:"absolute screen y coordinate to move to first"`
}

type MousePositionRequest struct{}

type MouseResult struct {
	Message         string      `json:"message"`
	Window          string      `json:"window,omitempty"`
	CurrentPosition types.Point `json:"current_position"`
}

// MouseMove moves the cursor to absolute screen coordinates.
func (e *Executor) MouseMove(ctx context.Context, req MouseMoveRequest) *CommandResponse {
	p := types.Point{X: req.X, Y: req.Y}
	if err := e.checkPoint(p); err != nil {
		return NewErrorResponse(err)
	}

	duration, err := e.delay("duration", req.Duration)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, gate.ToolMouseMove, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		return e.desktop.Input.MoveTo(ctx, p, duration)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return e.mouseResult(target, fmt.Sprintf("Moved mouse to (%d,%d)", p.X, p.Y))
}

// MouseClick clicks a button, optionally moving to x,y first.
func (e *Executor) MouseClick(ctx context.Context, req MouseClickRequest) *CommandResponse {
	p, err := e.point(req.X, req.Y)
	if err != nil {
		return NewErrorResponse(err)
	}

	button, err := desktop.ParseButton(req.Button)
	if err != nil {
		return NewErrorResponse(err)
	}

	interval, err := e.delay("interval", req.Interval)
	if err != nil {
		return NewErrorResponse(err)
	}

	clicks, err := e.repeat("clicks", req.Clicks, interval)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, gate.ToolMouseClick, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		if p != nil {
			if err := e.desktop.Input.MoveTo(ctx, *p, 0); err != nil {
				return err
			}
		}
		return e.desktop.Input.Click(ctx, button, clicks, interval)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	msg := fmt.Sprintf("Clicked %s button %d time(s)", button, clicks)
	if p != nil {
		msg = fmt.Sprintf("%s at (%d,%d)", msg, p.X, p.Y)
	}
	return e.mouseResult(target, msg)
}

// MouseDown presses and holds a button.
func (e *Executor) MouseDown(ctx context.Context, req MouseButtonRequest) *CommandResponse {
	return e.mouseToggle(ctx, gate.ToolMouseDown, req, true)
}

// MouseUp releases a button.
func (e *Executor) MouseUp(ctx context.Context, req MouseButtonRequest) *CommandResponse {
	return e.mouseToggle(ctx, gate.ToolMouseUp, req, false)
}

func (e *Executor) mouseToggle(ctx context.Context, tool gate.Tool, req MouseButtonRequest, down bool) *CommandResponse {
	p, err := e.point(req.X, req.Y)
	if err != nil {
		return NewErrorResponse(err)
	}

	button, err := desktop.ParseButton(req.Button)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, tool, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		if p != nil {
			if err := e.desktop.Input.MoveTo(ctx, *p, 0); err != nil {
				return err
			}
		}
		return e.desktop.Input.Toggle(button, down)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	action := "Released"
	if down {
		action = "Pressed"
	}
	return e.mouseResult(target, fmt.Sprintf("%s %s button", action, button))
}

// MouseScroll turns the wheel, optionally moving to x,y first.
func (e *Executor) MouseScroll(ctx context.Context, req MouseScrollRequest) *CommandResponse {
	if req.Clicks == 0 {
		return NewErrorResponse(invalidParams("clicks must not be zero"))
	}
	if limit := e.maxRepeat(); req.Clicks > limit || req.Clicks < -limit {
		return NewErrorResponse(invalidParams("clicks must be between -%d and %d, got %d", limit, limit, req.Clicks))
	}

	p, err := e.point(req.X, req.Y)
	if err != nil {
		return NewErrorResponse(err)
	}

	var target types.Window
	err = e.run(ctx, gate.ToolMouseScroll, e.target(req.ProcessName), func(ctx context.Context, w types.Window) error {
		target = w
		if p != nil {
			if err := e.desktop.Input.MoveTo(ctx, *p, 0); err != nil {
				return err
			}
		}
		return e.desktop.Input.Scroll(req.Clicks)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	direction := "up"
	amount := req.Clicks
	if amount < 0 {
		direction = "down"
		amount = -amount
	}
	return e.mouseResult(target, fmt.Sprintf("Scrolled %s %d click(s)", direction, amount))
}

// MouseGetPosition reports the cursor position.
func (e *Executor) MouseGetPosition(ctx context.Context, req MousePositionRequest) *CommandResponse {
	var pos types.Point
	err := e.run(ctx, gate.ToolMouseGetPosition, "", func(ctx context.Context, w types.Window) error {
		pos = e.desktop.Input.Position()
		return nil
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(MouseResult{
		Message:         fmt.Sprintf("Mouse is at (%d,%d)", pos.X, pos.Y),
		CurrentPosition: pos,
	})
}

func (e *Executor) mouseResult(w types.Window, msg string) *CommandResponse {
	return NewSuccessResponse(MouseResult{
		Message:         msg,
		Window:          w.String(),
		CurrentPosition: e.desktop.Input.Position(),
	})
}
