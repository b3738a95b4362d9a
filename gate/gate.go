// Package gate enforces the activate-before-write rule for every tool
// invocation.
//
// Each tool is statically classified. Write tools (keyboard and mouse
// injection) resolve their target window, activate it, wait a settle delay
// and only then dispatch. Read-only and lifecycle tools dispatch directly.
// Self-activating tools (foreground capture, window_activate) own their
// activation step and are dispatched directly as well.
//
// The gate keeps no state between invocations: a window activated by a
// previous call is never assumed to still be in the foreground.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mobile-next/wintest/types"
	"github.com/mobile-next/wintest/utils"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSettleDelay = 500 * time.Millisecond
	MinSettleDelay     = 300 * time.Millisecond
)

// ClampSettleDelay raises d to MinSettleDelay.
func ClampSettleDelay(d time.Duration) time.Duration {
	if d < MinSettleDelay {
		return MinSettleDelay
	}
	return d
}

// Resolver turns a process-name fragment into a live window.
type Resolver interface {
	Resolve(ctx context.Context, fragment string) (types.Window, error)
}

// Activator brings a window to the foreground.
type Activator interface {
	Activate(ctx context.Context, w types.Window) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Observer is notified of every state transition.
type Observer func(inv Invocation, state State)

// DispatchFunc performs the tool's action. For write tools w is the window
// that was just activated; for every other class it is the zero Window.
type DispatchFunc func(ctx context.Context, w types.Window) error

// Invocation is a single tool call. It is consumed by exactly one Run.
type Invocation struct {
	ID     string
	Tool   Tool
	Target string
}

// Gate routes invocations according to their class.
type Gate struct {
	resolver  Resolver
	activator Activator
	settle    time.Duration
	sleep     SleepFunc
	observer  Observer
}

type Option func(*Gate)

// WithSettleDelay sets the pause between activation and dispatch. Values
// below MinSettleDelay are raised.
func WithSettleDelay(d time.Duration) Option {
	return func(g *Gate) {
		g.settle = ClampSettleDelay(d)
	}
}

// WithSleeper replaces the settle wait, mostly for tests.
func WithSleeper(s SleepFunc) Option {
	return func(g *Gate) {
		g.sleep = s
	}
}

func WithObserver(o Observer) Option {
	return func(g *Gate) {
		g.observer = o
	}
}

// New creates a gate. Both collaborators are required.
func New(resolver Resolver, activator Activator, opts ...Option) *Gate {
	g := &Gate{
		resolver:  resolver,
		activator: activator,
		settle:    DefaultSettleDelay,
		sleep:     SleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SettleDelay returns the configured settle delay.
func (g *Gate) SettleDelay() time.Duration {
	return g.settle
}

// Run executes one invocation. A write invocation never reaches dispatch
// unless activation of its target succeeded within this same call.
func (g *Gate) Run(ctx context.Context, inv Invocation, dispatch DispatchFunc) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	log := utils.WithFields(logrus.Fields{"invocation": inv.ID, "tool": inv.Tool.Name()})

	g.transition(log, inv, StateReceived)

	class, err := Classify(inv.Tool)
	if err != nil {
		return g.fail(log, inv, err)
	}
	g.transition(log, inv, StateClassified)

	switch class {
	case ClassWrite:
		return g.runWrite(ctx, log, inv, dispatch)
	case ClassReadOnly, ClassSelfActivating, ClassLifecycle:
		if err := dispatch(ctx, types.Window{}); err != nil {
			return g.fail(log, inv, classifyDispatchError(inv.Tool, class, err))
		}
		g.transition(log, inv, StateDispatched)
		return nil
	}

	return g.fail(log, inv, fmt.Errorf("%w: %s has class %s", ErrUnclassifiedTool, inv.Tool, class))
}

func (g *Gate) runWrite(ctx context.Context, log *logrus.Entry, inv Invocation, dispatch DispatchFunc) error {
	target := strings.TrimSpace(inv.Target)
	if target == "" {
		return g.fail(log, inv, fmt.Errorf("%w: no target process specified", ErrWindowNotFound))
	}

	g.transition(log, inv, StateResolving)
	w, err := g.resolver.Resolve(ctx, target)
	if err != nil {
		if !errors.Is(err, ErrWindowNotFound) {
			err = fmt.Errorf("%w: '%s': %w", ErrWindowNotFound, target, err)
		}
		return g.fail(log, inv, err)
	}

	g.transition(log, inv, StateActivating)
	if err := g.activator.Activate(ctx, w); err != nil {
		if !errors.Is(err, ErrActivationFailed) {
			err = fmt.Errorf("%w: %s: %w", ErrActivationFailed, w, err)
		}
		return g.fail(log, inv, err)
	}

	g.transition(log, inv, StateSettling)
	if err := g.sleep(ctx, g.settle); err != nil {
		return g.fail(log, inv, fmt.Errorf("settle wait interrupted: %w", err))
	}

	if err := dispatch(ctx, w); err != nil {
		return g.fail(log, inv, classifyDispatchError(inv.Tool, ClassWrite, err))
	}
	g.transition(log, inv, StateDispatched)
	return nil
}

func (g *Gate) transition(log *logrus.Entry, inv Invocation, s State) {
	log.Debugf("state %s", s)
	if g.observer != nil {
		g.observer(inv, s)
	}
}

func (g *Gate) fail(log *logrus.Entry, inv Invocation, err error) error {
	log.WithError(err).Debug("invocation failed")
	if g.observer != nil {
		g.observer(inv, StateFailed)
	}
	return err
}

// classifyDispatchError tags an unclassified collaborator error with the
// taxonomy entry matching the tool.
func classifyDispatchError(t Tool, class Class, err error) error {
	if Code(err) != "" {
		return err
	}
	switch {
	case class == ClassWrite:
		return fmt.Errorf("%w: %w", ErrInjectionFailed, err)
	case t.IsCapture():
		return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	return err
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
