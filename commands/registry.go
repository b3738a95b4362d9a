package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mobile-next/wintest/gate"
)

// handler decodes raw JSON parameters and runs one tool.
type handler func(e *Executor, ctx context.Context, params json.RawMessage) *CommandResponse

func bind[R any](fn func(*Executor, context.Context, R) *CommandResponse) handler {
	return func(e *Executor, ctx context.Context, params json.RawMessage) *CommandResponse {
		var req R
		if len(params) > 0 && string(params) != "null" {
			if err := json.Unmarshal(params, &req); err != nil {
				return NewErrorResponse(invalidParams("%v", err))
			}
		}
		return fn(e, ctx, req)
	}
}

type toolEntry struct {
	description string
	handler     handler
}

var tools = map[gate.Tool]toolEntry{
	gate.ToolScreenshotCapture: {
		"Capture the whole screen as an image. Does not change window focus.",
		bind((*Executor).ScreenshotCapture),
	},
	gate.ToolScreenshotRegion: {
		"Capture a rectangle of the screen given by absolute x, y, width and height.",
		bind((*Executor).ScreenshotRegion),
	},
	gate.ToolWindowCaptureBackground: {
		"Capture a window without bringing it to the foreground.",
		bind((*Executor).WindowCaptureBackground),
	},
	gate.ToolWindowCaptureForeground: {
		"Activate a window, wait for it to settle and capture its area of the screen.",
		bind((*Executor).WindowCaptureForeground),
	},
	gate.ToolWindowGetRect: {
		"Report a window's absolute position and size. Does not activate it.",
		bind((*Executor).WindowGetRect),
	},
	gate.ToolAppListRunning: {
		"List running processes. Processes started by app_launch are marked as launched.",
		bind((*Executor).AppListRunning),
	},
	gate.ToolMouseGetPosition: {
		"Report the current cursor position.",
		bind((*Executor).MouseGetPosition),
	},
	gate.ToolGetScreenSize: {
		"Report the screen size in pixels.",
		bind((*Executor).GetScreenSize),
	},
	gate.ToolAppLaunch: {
		"Start an application and wait for it to come up. The new window is not activated.",
		bind((*Executor).AppLaunch),
	},
	gate.ToolAppTerminate: {
		"Terminate the first running process whose name contains process_name.",
		bind((*Executor).AppTerminate),
	},
	gate.ToolWindowActivate: {
		"Bring a window to the foreground and wait for it to settle.",
		bind((*Executor).WindowActivate),
	},
	gate.ToolKeyboardPress: {
		"Activate the target window, then press and release a key.",
		bind((*Executor).KeyboardPress),
	},
	gate.ToolKeyboardDown: {
		"Activate the target window, then hold a key down.",
		bind((*Executor).KeyboardDown),
	},
	gate.ToolKeyboardUp: {
		"Activate the target window, then release a held key.",
		bind((*Executor).KeyboardUp),
	},
	gate.ToolKeyboardType: {
		"Activate the target window, then type text.",
		bind((*Executor).KeyboardType),
	},
	gate.ToolMouseMove: {
		"Activate the target window, then move the cursor to absolute screen coordinates.",
		bind((*Executor).MouseMove),
	},
	gate.ToolMouseClick: {
		"Activate the target window, then click at absolute screen coordinates or at the cursor.",
		bind((*Executor).MouseClick),
	},
	gate.ToolMouseDown: {
		"Activate the target window, then press and hold a mouse button.",
		bind((*Executor).MouseDown),
	},
	gate.ToolMouseUp: {
		"Activate the target window, then release a mouse button.",
		bind((*Executor).MouseUp),
	},
	gate.ToolMouseScroll: {
		"Activate the target window, then scroll. Positive clicks scroll up.",
		bind((*Executor).MouseScroll),
	},
}

// ToolInfo describes a tool for listings.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Class       string `json:"class"`
	ReadOnly    bool   `json:"readOnly"`
}

// Describe returns the description of t.
func Describe(t gate.Tool) string {
	return tools[t].description
}

// ListTools describes every tool, sorted by name.
func ListTools() []ToolInfo {
	infos := make([]ToolInfo, 0, len(tools))
	for _, t := range gate.AllTools() {
		class, err := gate.Classify(t)
		if err != nil {
			continue
		}
		infos = append(infos, ToolInfo{
			Name:        t.Name(),
			Description: Describe(t),
			Class:       class.String(),
			ReadOnly:    class == gate.ClassReadOnly,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Invoke runs the tool called name with JSON encoded parameters.
func (e *Executor) Invoke(ctx context.Context, name string, params json.RawMessage) *CommandResponse {
	t, err := gate.Lookup(name)
	if err != nil {
		return NewErrorResponse(err)
	}

	entry, ok := tools[t]
	if !ok {
		return NewErrorResponse(fmt.Errorf("%w: %s has no handler", gate.ErrUnclassifiedTool, name))
	}
	return entry.handler(e, ctx, params)
}
