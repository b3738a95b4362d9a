package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/wintest/config"
	"github.com/mobile-next/wintest/desktop"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
	"github.com/mobile-next/wintest/utils"
)

var (
	// ErrInvalidParams marks a request rejected before it reached the gate.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrProcessFailed means an application could not be started or stopped.
	ErrProcessFailed = errors.New("process operation failed")
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
		Code:   ErrorCode(err),
	}
}

// ErrorCode maps err onto the code reported to clients.
func ErrorCode(err error) string {
	if code := gate.Code(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, desktop.ErrUnknownKey),
		errors.Is(err, desktop.ErrUnknownButton):
		return "INVALID_PARAMS"
	case errors.Is(err, ErrProcessFailed):
		return "PROCESS_FAILED"
	case errors.Is(err, desktop.ErrUnsupported):
		return "UNSUPPORTED"
	}
	return ""
}

func invalidParams(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

// Executor runs tool commands against a desktop. Invocations are
// serialized, so no other injection can slip in between an activation and
// the input that follows it.
type Executor struct {
	mu       sync.Mutex
	desktop  *desktop.Desktop
	gate     *gate.Gate
	cfg      config.Config
	launches *desktop.LaunchRegistry
	sleep    gate.SleepFunc
}

type Option func(*executorOptions)

type executorOptions struct {
	sleep    gate.SleepFunc
	observer gate.Observer
	launches *desktop.LaunchRegistry
}

// WithSleeper replaces every wait the executor performs, including the
// gate's settle delay.
func WithSleeper(s gate.SleepFunc) Option {
	return func(o *executorOptions) {
		o.sleep = s
	}
}

func WithObserver(obs gate.Observer) Option {
	return func(o *executorOptions) {
		o.observer = obs
	}
}

// WithLaunchRegistry shares a registry, e.g. with the shutdown hook.
func WithLaunchRegistry(r *desktop.LaunchRegistry) Option {
	return func(o *executorOptions) {
		o.launches = r
	}
}

// NewExecutor creates an executor bound to d.
func NewExecutor(d *desktop.Desktop, cfg config.Config, opts ...Option) (*Executor, error) {
	o := executorOptions{sleep: gate.SleepContext}
	for _, opt := range opts {
		opt(&o)
	}

	if o.launches == nil {
		launches, err := desktop.NewLaunchRegistry(desktop.DefaultLaunchRegistrySize)
		if err != nil {
			return nil, err
		}
		o.launches = launches
	}

	gateOpts := []gate.Option{
		gate.WithSettleDelay(cfg.Gate.SettleDelay),
		gate.WithSleeper(o.sleep),
	}
	if o.observer != nil {
		gateOpts = append(gateOpts, gate.WithObserver(o.observer))
	}

	return &Executor{
		desktop:  d,
		gate:     gate.New(d.Windows, d.Activator, gateOpts...),
		cfg:      cfg,
		launches: o.launches,
		sleep:    o.sleep,
	}, nil
}

// Launches returns the registry of processes started by app_launch.
func (e *Executor) Launches() *desktop.LaunchRegistry {
	return e.launches
}

// Config returns the configuration the executor was built with.
func (e *Executor) Config() config.Config {
	return e.cfg
}

// run sends one invocation through the gate while holding the executor lock.
func (e *Executor) run(ctx context.Context, tool gate.Tool, target string, dispatch gate.DispatchFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.gate.Run(ctx, gate.Invocation{Tool: tool, Target: target}, dispatch)
}

// target falls back to the configured default target.
func (e *Executor) target(processName string) string {
	if name := strings.TrimSpace(processName); name != "" {
		return name
	}
	return e.cfg.Gate.DefaultTarget
}

func (e *Executor) requireTarget(processName string) (string, error) {
	target := e.target(processName)
	if target == "" {
		return "", invalidParams("process_name is required")
	}
	return target, nil
}

// focus resolves, activates and settles on its own. It is used by the
// self-activating tools, which run under the gate's direct path.
func (e *Executor) focus(ctx context.Context, fragment string, wait time.Duration) (types.Window, error) {
	w, err := e.desktop.Windows.Resolve(ctx, fragment)
	if err != nil {
		if !errors.Is(err, gate.ErrWindowNotFound) {
			err = fmt.Errorf("%w: '%s': %w", gate.ErrWindowNotFound, fragment, err)
		}
		return types.Window{}, err
	}

	if err := e.desktop.Activator.Activate(ctx, w); err != nil {
		if !errors.Is(err, gate.ErrActivationFailed) {
			err = fmt.Errorf("%w: %s: %w", gate.ErrActivationFailed, w, err)
		}
		return types.Window{}, err
	}

	if wait < e.gate.SettleDelay() {
		wait = e.gate.SettleDelay()
	}
	if err := e.sleep(ctx, wait); err != nil {
		return types.Window{}, err
	}
	return w, nil
}

// resolve looks a window up without activating it.
func (e *Executor) resolve(ctx context.Context, fragment string) (types.Window, error) {
	w, err := e.desktop.Windows.Resolve(ctx, fragment)
	if err != nil && !errors.Is(err, gate.ErrWindowNotFound) {
		return types.Window{}, fmt.Errorf("%w: '%s': %w", gate.ErrWindowNotFound, fragment, err)
	}
	return w, err
}

// delay converts a caller supplied number of seconds. Negative values are
// rejected; values above the configured maximum are clamped.
func (e *Executor) delay(name string, seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, invalidParams("%s must be a non-negative number of seconds, got %v", name, seconds)
	}

	limit := e.maxDelay()
	if seconds > limit.Seconds() {
		utils.Verbose("%s of %vs clamped to %s", name, seconds, limit)
		return limit, nil
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (e *Executor) maxDelay() time.Duration {
	if e.cfg.Input.MaxDelay <= 0 {
		return config.DefaultMaxDelay
	}
	return e.cfg.Input.MaxDelay
}

func (e *Executor) maxRepeat() int {
	if e.cfg.Input.MaxRepeat <= 0 {
		return config.DefaultMaxRepeat
	}
	return e.cfg.Input.MaxRepeat
}

// repeat validates how many times an input is sent, zero meaning once.
// The count is capped by max_repeat and the pauses between repetitions
// by max_delay, so one invocation cannot hold the executor indefinitely.
func (e *Executor) repeat(name string, n int, interval time.Duration) (int, error) {
	if n == 0 {
		n = 1
	}
	if n < 0 {
		return 0, invalidParams("%s must be at least 1, got %d", name, n)
	}
	if limit := e.maxRepeat(); n > limit {
		return 0, invalidParams("%s must be at most %d, got %d", name, limit, n)
	}
	if total := time.Duration(n-1) * interval; total > e.maxDelay() {
		return 0, invalidParams("%d %s %s apart take %s, more than the %s limit", n, name, interval, total, e.maxDelay())
	}
	return n, nil
}

// optionalDelay is delay with a default for an absent value.
func (e *Executor) optionalDelay(name string, seconds *float64, def time.Duration) (time.Duration, error) {
	if seconds == nil {
		return def, nil
	}
	return e.delay(name, *seconds)
}

// point validates optional absolute coordinates. Both or neither must be
// given.
func (e *Executor) point(x, y *int) (*types.Point, error) {
	if x == nil && y == nil {
		return nil, nil
	}
	if x == nil || y == nil {
		return nil, invalidParams("x and y must be given together")
	}

	p := types.Point{X: *x, Y: *y}
	if err := e.checkPoint(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// checkPoint rejects points outside the virtual desktop.
func (e *Executor) checkPoint(p types.Point) error {
	screen, err := e.desktop.Capture.ScreenBounds()
	if err != nil {
		utils.Verbose("screen bounds unavailable, skipping bounds check: %v", err)
		return nil
	}

	if !screen.Contains(p) {
		return invalidParams("point (%d,%d) is outside the screen %s", p.X, p.Y, describeRect(screen))
	}
	return nil
}

// checkRegion rejects regions that reach past the virtual desktop.
func (e *Executor) checkRegion(r types.Rect) error {
	screen, err := e.desktop.Capture.ScreenBounds()
	if err != nil {
		utils.Verbose("screen bounds unavailable, skipping bounds check: %v", err)
		return nil
	}

	if !screen.ContainsRect(r) {
		return invalidParams("region %s is outside the screen %s", describeRect(r), describeRect(screen))
	}
	return nil
}

func describeRect(r types.Rect) string {
	return fmt.Sprintf("%dx%d at (%d,%d)", r.Width, r.Height, r.X, r.Y)
}
