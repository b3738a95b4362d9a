package desktop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
	"github.com/mobile-next/wintest/utils"
)

// moveStep is the interval between interpolated points of a timed move.
const moveStep = 10 * time.Millisecond

// Robot implements WindowRegistry, Activator and Injector on top of robotgo.
type Robot struct {
	// processes and findWindow are replaced in tests
	processes  func() ([]types.ProcessInfo, error)
	findWindow func(pid int) (uintptr, bool)
}

func NewRobot() *Robot {
	return &Robot{
		processes:  listProcesses,
		findWindow: topLevelWindow,
	}
}

func listProcesses() ([]types.ProcessInfo, error) {
	nps, err := robotgo.Process()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	procs := make([]types.ProcessInfo, 0, len(nps))
	for _, p := range nps {
		procs = append(procs, types.ProcessInfo{PID: p.Pid, Name: p.Name})
	}
	return procs, nil
}

// Resolve returns the first process whose name contains fragment,
// case-insensitively, and that owns a top-level window.
func (r *Robot) Resolve(ctx context.Context, fragment string) (types.Window, error) {
	if err := ctx.Err(); err != nil {
		return types.Window{}, err
	}

	procs, err := r.processes()
	if err != nil {
		return types.Window{}, err
	}

	w, ok := matchWindow(procs, fragment, r.findWindow)
	if !ok {
		return types.Window{}, fmt.Errorf("%w: no running process matches '%s'", gate.ErrWindowNotFound, fragment)
	}

	utils.Verbose("resolved '%s' to %s", fragment, w)
	return w, nil
}

func matchWindow(procs []types.ProcessInfo, fragment string, findWindow func(pid int) (uintptr, bool)) (types.Window, bool) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return types.Window{}, false
	}

	for _, p := range procs {
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		handle, ok := findWindow(p.PID)
		if !ok {
			continue
		}
		return types.Window{PID: p.PID, Name: p.Name, Handle: handle}, true
	}
	return types.Window{}, false
}

func (r *Robot) List(ctx context.Context) ([]types.ProcessInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.processes()
}

// Activate restores w if it is minimised and brings it to the foreground.
func (r *Robot) Activate(ctx context.Context, w types.Window) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := robotgo.PidExists(w.PID)
	if err != nil || !exists {
		return fmt.Errorf("%w: process %d is no longer running", gate.ErrActivationFailed, w.PID)
	}

	if w.Handle != 0 {
		restoreWindow(w.Handle)
	}

	if err := robotgo.ActivePid(w.PID); err != nil {
		return fmt.Errorf("%w: %s: %w", gate.ErrActivationFailed, w, err)
	}
	return nil
}

func (r *Robot) KeyTap(key Key) error {
	if err := robotgo.KeyTap(string(key)); err != nil {
		return fmt.Errorf("%w: key '%s': %w", gate.ErrInjectionFailed, key, err)
	}
	return nil
}

func (r *Robot) KeyToggle(key Key, down bool) error {
	state := "up"
	if down {
		state = "down"
	}
	if err := robotgo.KeyToggle(string(key), state); err != nil {
		return fmt.Errorf("%w: key '%s' %s: %w", gate.ErrInjectionFailed, key, state, err)
	}
	return nil
}

// TypeText types text, pausing interval between characters when it is
// positive.
func (r *Robot) TypeText(ctx context.Context, text string, interval time.Duration) error {
	if interval <= 0 {
		robotgo.TypeStr(text)
		return nil
	}

	for i, ch := range []rune(text) {
		if i > 0 {
			if err := gate.SleepContext(ctx, interval); err != nil {
				return err
			}
		}
		robotgo.TypeStr(string(ch))
	}
	return nil
}

// MoveTo moves the cursor to p. A positive duration moves in straight
// line steps instead of jumping.
func (r *Robot) MoveTo(ctx context.Context, p types.Point, duration time.Duration) error {
	steps := int(duration / moveStep)
	if steps <= 1 {
		robotgo.Move(p.X, p.Y)
		return nil
	}

	for _, pt := range linearPath(r.Position(), p, steps) {
		robotgo.Move(pt.X, pt.Y)
		if err := gate.SleepContext(ctx, moveStep); err != nil {
			return err
		}
	}
	return nil
}

// linearPath returns steps points from just after from up to and
// including to.
func linearPath(from, to types.Point, steps int) []types.Point {
	if steps < 1 {
		steps = 1
	}
	path := make([]types.Point, 0, steps)
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		path = append(path, types.Point{
			X: from.X + int(dx*t),
			Y: from.Y + int(dy*t),
		})
	}
	return path
}

func (r *Robot) Click(ctx context.Context, button Button, clicks int, interval time.Duration) error {
	for i := 0; i < clicks; i++ {
		if i > 0 && interval > 0 {
			if err := gate.SleepContext(ctx, interval); err != nil {
				return err
			}
		}

		if button.Extended() {
			if err := r.Toggle(button, true); err != nil {
				return err
			}
			if err := r.Toggle(button, false); err != nil {
				return err
			}
			continue
		}
		robotgo.Click(button.robotName())
	}
	return nil
}

func (r *Robot) Toggle(button Button, down bool) error {
	if button.Extended() {
		if err := sendXButton(button.xButton(), down); err != nil {
			return fmt.Errorf("%w: %s: %w", gate.ErrInjectionFailed, button, err)
		}
		return nil
	}

	var err error
	if down {
		err = robotgo.Toggle(button.robotName())
	} else {
		err = robotgo.Toggle(button.robotName(), "up")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", gate.ErrInjectionFailed, button, err)
	}
	return nil
}

// Scroll turns the wheel; positive clicks scroll up.
func (r *Robot) Scroll(clicks int) error {
	robotgo.Scroll(0, clicks)
	return nil
}

func (r *Robot) Position() types.Point {
	x, y := robotgo.Location()
	return types.Point{X: x, Y: y}
}
