package gate

import "fmt"

// Tool is the closed set of tool kinds the server exposes.
type Tool int

const (
	ToolScreenshotCapture Tool = iota + 1
	ToolScreenshotRegion
	ToolWindowCaptureBackground
	ToolWindowCaptureForeground
	ToolWindowGetRect
	ToolAppListRunning
	ToolMouseGetPosition
	ToolGetScreenSize
	ToolAppLaunch
	ToolAppTerminate
	ToolWindowActivate
	ToolKeyboardPress
	ToolKeyboardDown
	ToolKeyboardUp
	ToolKeyboardType
	ToolMouseMove
	ToolMouseClick
	ToolMouseDown
	ToolMouseUp
	ToolMouseScroll
)

// Class decides which path an invocation takes through the gate.
type Class int

const (
	// ClassReadOnly dispatches directly, without resolution or activation.
	ClassReadOnly Class = iota + 1
	// ClassWrite resolves, activates and settles before dispatch.
	ClassWrite
	// ClassSelfActivating tools perform their own activation step.
	ClassSelfActivating
	// ClassLifecycle tools start or stop processes and never activate.
	ClassLifecycle
)

func (c Class) String() string {
	switch c {
	case ClassReadOnly:
		return "read-only"
	case ClassWrite:
		return "write"
	case ClassSelfActivating:
		return "self-activating"
	case ClassLifecycle:
		return "lifecycle"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

type toolSpec struct {
	name  string
	class Class
}

var toolTable = map[Tool]toolSpec{
	ToolScreenshotCapture:       {"screenshot_capture", ClassReadOnly},
	ToolScreenshotRegion:        {"screenshot_region", ClassReadOnly},
	ToolWindowCaptureBackground: {"window_capture_background", ClassReadOnly},
	ToolWindowCaptureForeground: {"window_capture_foreground", ClassSelfActivating},
	ToolWindowGetRect:           {"window_get_rect", ClassReadOnly},
	ToolAppListRunning:          {"app_list_running", ClassReadOnly},
	ToolMouseGetPosition:        {"mouse_get_position", ClassReadOnly},
	ToolGetScreenSize:           {"get_screen_size", ClassReadOnly},
	ToolAppLaunch:               {"app_launch", ClassLifecycle},
	ToolAppTerminate:            {"app_terminate", ClassLifecycle},
	ToolWindowActivate:          {"window_activate", ClassSelfActivating},
	ToolKeyboardPress:           {"keyboard_press", ClassWrite},
	ToolKeyboardDown:            {"keyboard_down", ClassWrite},
	ToolKeyboardUp:              {"keyboard_up", ClassWrite},
	ToolKeyboardType:            {"keyboard_type", ClassWrite},
	ToolMouseMove:               {"mouse_move", ClassWrite},
	ToolMouseClick:              {"mouse_click", ClassWrite},
	ToolMouseDown:               {"mouse_down", ClassWrite},
	ToolMouseUp:                 {"mouse_up", ClassWrite},
	ToolMouseScroll:             {"mouse_scroll", ClassWrite},
}

var toolsByName = func() map[string]Tool {
	m := make(map[string]Tool, len(toolTable))
	for t, entry := range toolTable {
		m[entry.name] = t
	}
	return m
}()

// AllTools returns every tool in declaration order.
func AllTools() []Tool {
	tools := make([]Tool, 0, len(toolTable))
	for t := ToolScreenshotCapture; t <= ToolMouseScroll; t++ {
		tools = append(tools, t)
	}
	return tools
}

// Name returns the wire name of the tool, e.g. "mouse_click".
func (t Tool) Name() string {
	if entry, ok := toolTable[t]; ok {
		return entry.name
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

func (t Tool) String() string {
	return t.Name()
}

// Classify returns the static class of t. Unknown tools are an error;
// there is no fallback class.
func Classify(t Tool) (Class, error) {
	entry, ok := toolTable[t]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnclassifiedTool, int(t))
	}
	return entry.class, nil
}

// Lookup resolves a wire name to its tool.
func Lookup(name string) (Tool, error) {
	t, ok := toolsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnclassifiedTool, name)
	}
	return t, nil
}

// IsCapture reports whether the tool produces an image.
func (t Tool) IsCapture() bool {
	switch t {
	case ToolScreenshotCapture, ToolScreenshotRegion, ToolWindowCaptureBackground, ToolWindowCaptureForeground:
		return true
	}
	return false
}
