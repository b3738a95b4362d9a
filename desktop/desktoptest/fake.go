// Package desktoptest provides an in-memory desktop that records every
// call, for testing code built on package desktop.
package desktoptest

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/wintest/desktop"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

// Recorder collects calls in the order they happened.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) Add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Count returns how many calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Index returns the position of the first call starting with prefix, or -1.
func (r *Recorder) Index(prefix string) int {
	for i, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Fake implements every desktop collaborator. Processes all own a window
// whose handle equals their PID.
type Fake struct {
	Rec *Recorder

	ActivateErr error
	InjectErr   error
	CaptureErr  error
	Size        types.Size
	// Origin is the top-left corner of the virtual desktop.
	Origin      types.Point

	mu      sync.Mutex
	procs   []types.ProcessInfo
	nextPID int
	cursor  types.Point
}

// New returns a fake with a 1920x1080 screen running procs.
func New(procs ...types.ProcessInfo) *Fake {
	return &Fake{
		Rec:     &Recorder{},
		Size:    types.Size{Width: 1920, Height: 1080},
		procs:   procs,
		nextPID: 1000,
	}
}

// Desktop wires the fake into every slot.
func (f *Fake) Desktop() *desktop.Desktop {
	return &desktop.Desktop{Windows: f, Activator: f, Input: f, Capture: f, Processes: f}
}

// Sleep records the wait instead of sleeping.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	f.Rec.Add("sleep %s", d)
	return ctx.Err()
}

func (f *Fake) Resolve(ctx context.Context, fragment string) (types.Window, error) {
	f.Rec.Add("resolve %s", fragment)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.procs {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(fragment)) {
			return types.Window{PID: p.PID, Name: p.Name, Handle: uintptr(p.PID)}, nil
		}
	}
	return types.Window{}, fmt.Errorf("%w: no running process matches '%s'", gate.ErrWindowNotFound, fragment)
}

func (f *Fake) List(ctx context.Context) ([]types.ProcessInfo, error) {
	f.Rec.Add("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.ProcessInfo(nil), f.procs...), nil
}

func (f *Fake) Activate(ctx context.Context, w types.Window) error {
	f.Rec.Add("activate %d", w.PID)
	return f.ActivateErr
}

func (f *Fake) KeyTap(key desktop.Key) error {
	f.Rec.Add("tap %s", key)
	return f.InjectErr
}

func (f *Fake) KeyToggle(key desktop.Key, down bool) error {
	f.Rec.Add("toggle key %s %v", key, down)
	return f.InjectErr
}

func (f *Fake) TypeText(ctx context.Context, text string, interval time.Duration) error {
	f.Rec.Add("type %q %s", text, interval)
	return f.InjectErr
}

func (f *Fake) MoveTo(ctx context.Context, p types.Point, duration time.Duration) error {
	f.Rec.Add("move %d,%d %s", p.X, p.Y, duration)
	f.mu.Lock()
	f.cursor = p
	f.mu.Unlock()
	return f.InjectErr
}

func (f *Fake) Click(ctx context.Context, button desktop.Button, clicks int, interval time.Duration) error {
	f.Rec.Add("click %s %d %s", button, clicks, interval)
	return f.InjectErr
}

func (f *Fake) Toggle(button desktop.Button, down bool) error {
	f.Rec.Add("toggle button %s %v", button, down)
	return f.InjectErr
}

func (f *Fake) Scroll(clicks int) error {
	f.Rec.Add("scroll %d", clicks)
	return f.InjectErr
}

func (f *Fake) Position() types.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Screen returns a blank image one hundredth of the screen size.
func (f *Fake) Screen() (image.Image, error) {
	f.Rec.Add("capture screen")
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	return image.NewRGBA(image.Rect(0, 0, f.Size.Width/100, f.Size.Height/100)), nil
}

func (f *Fake) ScreenSize() (types.Size, error) {
	return f.Size, nil
}

func (f *Fake) ScreenBounds() (types.Rect, error) {
	return types.Rect{X: f.Origin.X, Y: f.Origin.Y, Width: f.Size.Width, Height: f.Size.Height}, nil
}

func (f *Fake) Region(r types.Rect) (image.Image, error) {
	f.Rec.Add("capture region %d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	return image.NewRGBA(image.Rect(0, 0, r.Width, r.Height)), nil
}

func (f *Fake) Window(w types.Window) (image.Image, error) {
	f.Rec.Add("capture window %d", w.PID)
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	return image.NewRGBA(image.Rect(0, 0, 8, 6)), nil
}

// WindowRect reports every window as 8x6 at (10,20).
func (f *Fake) WindowRect(w types.Window) (types.Rect, error) {
	f.Rec.Add("rect %d", w.PID)
	return types.Rect{X: 10, Y: 20, Width: 8, Height: 6}, nil
}

// Launch adds a process named after the last path element. PIDs start
// at 1001.
func (f *Fake) Launch(ctx context.Context, path string, args []string) (int, error) {
	f.Rec.Add("launch %s", path)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPID++
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	f.procs = append(f.procs, types.ProcessInfo{PID: f.nextPID, Name: name})
	return f.nextPID, nil
}

func (f *Fake) Terminate(pid int) error {
	f.Rec.Add("terminate %d", pid)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.procs {
		if p.PID == pid {
			f.procs = append(f.procs[:i], f.procs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *Fake) Exists(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.procs {
		if p.PID == pid {
			return true
		}
	}
	return false
}
