package gate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mobile-next/wintest/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects collaborator calls in the order they happened.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type fakeResolver struct {
	rec     *recorder
	windows map[string]types.Window
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, fragment string) (types.Window, error) {
	f.rec.add("resolve %s", fragment)
	if f.err != nil {
		return types.Window{}, f.err
	}
	w, ok := f.windows[fragment]
	if !ok {
		return types.Window{}, fmt.Errorf("%w: '%s'", ErrWindowNotFound, fragment)
	}
	return w, nil
}

type fakeActivator struct {
	rec *recorder
	err error
}

func (f *fakeActivator) Activate(ctx context.Context, w types.Window) error {
	f.rec.add("activate %d", w.PID)
	return f.err
}

var notepad = types.Window{PID: 4242, Name: "notepad.exe"}

func newTestGate(rec *recorder, resolverErr, activateErr error, settle *[]time.Duration) *Gate {
	resolver := &fakeResolver{rec: rec, windows: map[string]types.Window{"notepad": notepad}, err: resolverErr}
	activator := &fakeActivator{rec: rec, err: activateErr}
	return New(resolver, activator,
		WithSettleDelay(400*time.Millisecond),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			rec.add("settle %s", d)
			if settle != nil {
				*settle = append(*settle, d)
			}
			return ctx.Err()
		}),
	)
}

func TestRun_WriteToolsActivateOnceBeforeDispatch(t *testing.T) {
	for _, tool := range AllTools() {
		class, _ := Classify(tool)
		if class != ClassWrite {
			continue
		}

		t.Run(tool.Name(), func(t *testing.T) {
			rec := &recorder{}
			g := newTestGate(rec, nil, nil, nil)

			err := g.Run(context.Background(), Invocation{Tool: tool, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
				assert.Equal(t, notepad, w)
				rec.add("inject")
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, []string{"resolve notepad", "activate 4242", "settle 400ms", "inject"}, rec.calls)
		})
	}
}

func TestRun_NonWriteToolsNeverActivate(t *testing.T) {
	for _, tool := range AllTools() {
		class, _ := Classify(tool)
		if class == ClassWrite {
			continue
		}

		t.Run(tool.Name(), func(t *testing.T) {
			rec := &recorder{}
			g := newTestGate(rec, nil, nil, nil)

			err := g.Run(context.Background(), Invocation{Tool: tool, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
				assert.Zero(t, w)
				rec.add("dispatch")
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, []string{"dispatch"}, rec.calls)
		})
	}
}

func TestRun_WindowNotFoundNeverDispatches(t *testing.T) {
	rec := &recorder{}
	g := newTestGate(rec, nil, nil, nil)

	err := g.Run(context.Background(), Invocation{Tool: ToolKeyboardType, Target: "ghost_process"}, func(ctx context.Context, w types.Window) error {
		rec.add("inject")
		return nil
	})

	require.ErrorIs(t, err, ErrWindowNotFound)
	assert.Equal(t, "WINDOW_NOT_FOUND", Code(err))
	assert.Equal(t, []string{"resolve ghost_process"}, rec.calls)
}

func TestRun_ResolverErrorIsWrappedAsWindowNotFound(t *testing.T) {
	rec := &recorder{}
	cause := errors.New("process table unavailable")
	g := newTestGate(rec, cause, nil, nil)

	err := g.Run(context.Background(), Invocation{Tool: ToolMouseMove, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
		rec.add("inject")
		return nil
	})

	require.ErrorIs(t, err, ErrWindowNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, rec.calls, "inject")
}

func TestRun_EmptyTargetIsWindowNotFound(t *testing.T) {
	rec := &recorder{}
	g := newTestGate(rec, nil, nil, nil)

	err := g.Run(context.Background(), Invocation{Tool: ToolKeyboardPress, Target: "  "}, func(ctx context.Context, w types.Window) error {
		rec.add("inject")
		return nil
	})

	require.ErrorIs(t, err, ErrWindowNotFound)
	assert.Empty(t, rec.calls)
}

func TestRun_ActivationFailedNeverDispatches(t *testing.T) {
	rec := &recorder{}
	g := newTestGate(rec, nil, errors.New("window closed"), nil)

	err := g.Run(context.Background(), Invocation{Tool: ToolMouseClick, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
		rec.add("inject")
		return nil
	})

	require.ErrorIs(t, err, ErrActivationFailed)
	assert.Equal(t, "ACTIVATION_FAILED", Code(err))
	assert.Equal(t, []string{"resolve notepad", "activate 4242"}, rec.calls)
}

func TestRun_SettleDelayIsAtLeastConfigured(t *testing.T) {
	tests := []struct {
		name       string
		configured time.Duration
		want       time.Duration
	}{
		{"default", 0, DefaultSettleDelay},
		{"below floor", 50 * time.Millisecond, MinSettleDelay},
		{"above floor", 750 * time.Millisecond, 750 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var waited []time.Duration
			opts := []Option{WithSleeper(func(ctx context.Context, d time.Duration) error {
				waited = append(waited, d)
				return nil
			})}
			if tt.configured > 0 {
				opts = append(opts, WithSettleDelay(tt.configured))
			}

			rec := &recorder{}
			g := New(&fakeResolver{rec: rec, windows: map[string]types.Window{"notepad": notepad}}, &fakeActivator{rec: rec}, opts...)

			err := g.Run(context.Background(), Invocation{Tool: ToolKeyboardUp, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
				return nil
			})

			require.NoError(t, err)
			require.Len(t, waited, 1)
			assert.Equal(t, tt.want, waited[0])
			assert.GreaterOrEqual(t, waited[0], MinSettleDelay)
		})
	}
}

func TestRun_RealSettleWaitElapses(t *testing.T) {
	rec := &recorder{}
	var activatedAt, injectedAt time.Time
	g := New(&fakeResolver{rec: rec, windows: map[string]types.Window{"notepad": notepad}}, activatorFunc(func(ctx context.Context, w types.Window) error {
		activatedAt = time.Now()
		return nil
	}), WithSettleDelay(MinSettleDelay))

	err := g.Run(context.Background(), Invocation{Tool: ToolKeyboardType, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
		injectedAt = time.Now()
		return nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, injectedAt.Sub(activatedAt), MinSettleDelay)
}

type activatorFunc func(ctx context.Context, w types.Window) error

func (f activatorFunc) Activate(ctx context.Context, w types.Window) error {
	return f(ctx, w)
}

func TestRun_CancelledDuringSettleNeverDispatches(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	g := New(&fakeResolver{rec: rec, windows: map[string]types.Window{"notepad": notepad}}, activatorFunc(func(ctx context.Context, w types.Window) error {
		cancel()
		return nil
	}))

	err := g.Run(ctx, Invocation{Tool: ToolMouseScroll, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
		rec.add("inject")
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, rec.calls, "inject")
}

func TestRun_DispatchErrorsAreClassified(t *testing.T) {
	cause := errors.New("access denied")

	tests := []struct {
		name string
		tool Tool
		want error
	}{
		{"write tool", ToolKeyboardPress, ErrInjectionFailed},
		{"capture tool", ToolScreenshotRegion, ErrCaptureFailed},
		{"foreground capture", ToolWindowCaptureForeground, ErrCaptureFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			g := newTestGate(rec, nil, nil, nil)

			err := g.Run(context.Background(), Invocation{Tool: tt.tool, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
				return cause
			})

			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestRun_AlreadyClassifiedDispatchErrorIsKept(t *testing.T) {
	rec := &recorder{}
	g := newTestGate(rec, nil, nil, nil)

	err := g.Run(context.Background(), Invocation{Tool: ToolWindowActivate, Target: "ghost_process"}, func(ctx context.Context, w types.Window) error {
		return fmt.Errorf("%w: 'ghost_process'", ErrWindowNotFound)
	})

	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.NotErrorIs(t, err, ErrCaptureFailed)
}

func TestRun_UnknownToolFails(t *testing.T) {
	rec := &recorder{}
	g := newTestGate(rec, nil, nil, nil)

	err := g.Run(context.Background(), Invocation{Tool: Tool(999)}, func(ctx context.Context, w types.Window) error {
		rec.add("dispatch")
		return nil
	})

	assert.ErrorIs(t, err, ErrUnclassifiedTool)
	assert.Empty(t, rec.calls)
}

func TestRun_ObserverSeesStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     Tool
		target   string
		activate error
		want     []State
	}{
		{
			name:   "write",
			tool:   ToolMouseClick,
			target: "notepad",
			want:   []State{StateReceived, StateClassified, StateResolving, StateActivating, StateSettling, StateDispatched},
		},
		{
			name: "read-only",
			tool: ToolGetScreenSize,
			want: []State{StateReceived, StateClassified, StateDispatched},
		},
		{
			name:     "activation failure",
			tool:     ToolKeyboardDown,
			target:   "notepad",
			activate: errors.New("gone"),
			want:     []State{StateReceived, StateClassified, StateResolving, StateActivating, StateFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			var states []State
			var ids []string
			g := New(
				&fakeResolver{rec: rec, windows: map[string]types.Window{"notepad": notepad}},
				&fakeActivator{rec: rec, err: tt.activate},
				WithSleeper(func(ctx context.Context, d time.Duration) error { return nil }),
				WithObserver(func(inv Invocation, s State) {
					states = append(states, s)
					ids = append(ids, inv.ID)
				}),
			)

			_ = g.Run(context.Background(), Invocation{Tool: tt.tool, Target: tt.target}, func(ctx context.Context, w types.Window) error {
				return nil
			})

			assert.Equal(t, tt.want, states)
			require.NotEmpty(t, ids)
			assert.NotEmpty(t, ids[0])
			for _, id := range ids {
				assert.Equal(t, ids[0], id)
			}
		})
	}
}

func TestRun_NoActivationInheritedAcrossInvocations(t *testing.T) {
	rec := &recorder{}
	g := newTestGate(rec, nil, nil, nil)

	for i := 0; i < 3; i++ {
		err := g.Run(context.Background(), Invocation{Tool: ToolKeyboardPress, Target: "notepad"}, func(ctx context.Context, w types.Window) error {
			rec.add("inject")
			return nil
		})
		require.NoError(t, err)
	}

	activations := 0
	for _, c := range rec.calls {
		if c == "activate 4242" {
			activations++
		}
	}
	assert.Equal(t, 3, activations)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, SleepContext(context.Background(), 0))
}
