// Package desktop binds the gate's collaborators to the operating system:
// process and window lookup, activation, keyboard and mouse injection and
// screen capture.
package desktop

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/mobile-next/wintest/types"
)

// ErrUnsupported marks a capability the current platform does not provide.
var ErrUnsupported = errors.New("not supported on this platform")

// WindowRegistry resolves process-name fragments to windows. It never
// caches: every call re-reads the process table.
type WindowRegistry interface {
	Resolve(ctx context.Context, fragment string) (types.Window, error)
	List(ctx context.Context) ([]types.ProcessInfo, error)
}

// Activator brings a window to the foreground.
type Activator interface {
	Activate(ctx context.Context, w types.Window) error
}

// Injector sends keyboard and mouse events to whatever window currently
// has focus. Coordinates are absolute screen coordinates.
type Injector interface {
	KeyTap(key Key) error
	KeyToggle(key Key, down bool) error
	TypeText(ctx context.Context, text string, interval time.Duration) error
	MoveTo(ctx context.Context, p types.Point, duration time.Duration) error
	Click(ctx context.Context, button Button, clicks int, interval time.Duration) error
	Toggle(button Button, down bool) error
	Scroll(clicks int) error
	Position() types.Point
}

// Capturer grabs pixels from the screen or from a single window.
type Capturer interface {
	Screen() (image.Image, error)
	ScreenSize() (types.Size, error)
	// ScreenBounds is the virtual desktop. Its origin is negative when a
	// display sits left of or above the primary one.
	ScreenBounds() (types.Rect, error)
	Region(r types.Rect) (image.Image, error)
	Window(w types.Window) (image.Image, error)
	WindowRect(w types.Window) (types.Rect, error)
}

// ProcessManager starts and stops applications.
type ProcessManager interface {
	Launch(ctx context.Context, path string, args []string) (int, error)
	Terminate(pid int) error
	Exists(pid int) bool
}

// Desktop groups the collaborators a command needs.
type Desktop struct {
	Windows   WindowRegistry
	Activator Activator
	Input     Injector
	Capture   Capturer
	Processes ProcessManager
}

// New returns a Desktop backed by the local machine.
func New() *Desktop {
	robot := NewRobot()
	return &Desktop{
		Windows:   robot,
		Activator: robot,
		Input:     robot,
		Capture:   NewScreenCapturer(),
		Processes: NewProcessManager(),
	}
}
