package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mobile-next/wintest/config"
	"github.com/mobile-next/wintest/desktop/desktoptest"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notepadProcess = types.ProcessInfo{PID: 42, Name: "notepad.exe"}

func TestNotepadLaunchThenType(t *testing.T) {
	f := desktoptest.New()
	e := newTestExecutor(f)

	launch := e.AppLaunch(context.Background(), AppLaunchRequest{AppPath: `C:\Windows\notepad.exe`})
	require.Equal(t, "ok", launch.Status, launch.Error)
	assert.Equal(t, 0, f.Rec.Count("activate"), "app_launch must not activate")

	typed := e.KeyboardType(context.Background(), KeyboardTypeRequest{ProcessName: "notepad", Text: "Hello World"})
	require.Equal(t, "ok", typed.Status, typed.Error)

	calls := f.Rec.Calls()
	assert.Equal(t, 1, f.Rec.Count("activate"))
	activate := f.Rec.Index("activate 1001")
	typing := f.Rec.Index(`type "Hello World"`)
	require.NotEqual(t, -1, activate)
	require.NotEqual(t, -1, typing)
	assert.Less(t, activate, typing, "calls: %v", calls)
	assert.Equal(t, "sleep 500ms", calls[typing-1], "settle must sit between activation and typing")
}

func TestWindowActivate_GhostProcess(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f)

	resp := e.WindowActivate(context.Background(), WindowActivateRequest{ProcessName: "ghost_process"})

	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "WINDOW_NOT_FOUND", resp.Code)
	assert.Equal(t, 0, f.Rec.Count("activate"))
}

func TestMouseClick_RightAt500x300(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f)

	x, y := 500, 300
	resp := e.MouseClick(context.Background(), MouseClickRequest{ProcessName: "notepad", X: &x, Y: &y, Button: "right"})
	require.Equal(t, "ok", resp.Status, resp.Error)

	assert.Equal(t, []string{
		"resolve notepad",
		"activate 42",
		"sleep 500ms",
		"move 500,300 0s",
		"click right 1 0s",
	}, f.Rec.Calls())

	result := resp.Data.(MouseResult)
	assert.Equal(t, types.Point{X: 500, Y: 300}, result.CurrentPosition)
}

var writeInvocations = []struct {
	tool   string
	params string
	inject string
}{
	{"keyboard_press", `{"key":"a"}`, "tap a"},
	{"keyboard_down", `{"key":"shift"}`, "toggle key shift true"},
	{"keyboard_up", `{"key":"shift"}`, "toggle key shift false"},
	{"keyboard_type", `{"text":"hi"}`, `type "hi"`},
	{"mouse_move", `{"x":10,"y":10}`, "move 10,10"},
	{"mouse_click", `{}`, "click left 1"},
	{"mouse_down", `{"button":"middle"}`, "toggle button middle true"},
	{"mouse_up", `{"button":"middle"}`, "toggle button middle false"},
	{"mouse_scroll", `{"clicks":-3}`, "scroll -3"},
}

func withTarget(params, target string) json.RawMessage {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(params), &m); err != nil {
		panic(err)
	}
	m["process_name"] = target
	data, _ := json.Marshal(m)
	return data
}

func TestWriteTools_ActivateExactlyOnceBeforeInjection(t *testing.T) {
	require.Len(t, writeInvocations, 9)

	for _, tt := range writeInvocations {
		t.Run(tt.tool, func(t *testing.T) {
			f := desktoptest.New(notepadProcess)
			e := newTestExecutor(f)

			resp := e.Invoke(context.Background(), tt.tool, withTarget(tt.params, "NotePad"))
			require.Equal(t, "ok", resp.Status, resp.Error)

			calls := f.Rec.Calls()
			require.GreaterOrEqual(t, len(calls), 4, "calls: %v", calls)
			assert.Equal(t, "resolve NotePad", calls[0])
			assert.Equal(t, "activate 42", calls[1])
			assert.Equal(t, "sleep 500ms", calls[2])
			assert.Contains(t, calls[3], tt.inject)
			assert.Equal(t, 1, f.Rec.Count("activate"))
		})
	}
}

func TestWriteTools_WindowNotFoundNeverInjects(t *testing.T) {
	for _, tt := range writeInvocations {
		t.Run(tt.tool, func(t *testing.T) {
			f := desktoptest.New(notepadProcess)
			e := newTestExecutor(f)

			resp := e.Invoke(context.Background(), tt.tool, withTarget(tt.params, "ghost_process"))

			assert.Equal(t, "WINDOW_NOT_FOUND", resp.Code)
			assert.Equal(t, []string{"resolve ghost_process"}, f.Rec.Calls())
		})
	}
}

func TestWriteTools_ActivationFailedNeverInjects(t *testing.T) {
	for _, tt := range writeInvocations {
		t.Run(tt.tool, func(t *testing.T) {
			f := desktoptest.New(notepadProcess)
			f.ActivateErr = errors.New("window closed")
			e := newTestExecutor(f)

			resp := e.Invoke(context.Background(), tt.tool, withTarget(tt.params, "notepad"))

			assert.Equal(t, "ACTIVATION_FAILED", resp.Code)
			assert.Equal(t, []string{"resolve notepad", "activate 42"}, f.Rec.Calls())
		})
	}
}

func TestWriteTools_InjectionFailure(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	f.InjectErr = errors.New("access is denied")
	e := newTestExecutor(f)

	resp := e.KeyboardPress(context.Background(), KeyboardPressRequest{ProcessName: "notepad", Key: "a"})

	assert.Equal(t, "INJECTION_FAILED", resp.Code)
	assert.Contains(t, resp.Error, "access is denied")
}

func TestWriteTools_MissingTarget(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f)

	resp := e.KeyboardPress(context.Background(), KeyboardPressRequest{Key: "a"})

	assert.Equal(t, "WINDOW_NOT_FOUND", resp.Code)
	assert.Empty(t, f.Rec.Calls())
}

func TestWriteTools_DefaultTarget(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f, func(cfg *config.Config) {
		cfg.Gate.DefaultTarget = "notepad"
	})

	resp := e.KeyboardPress(context.Background(), KeyboardPressRequest{Key: "enter"})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, "resolve notepad", f.Rec.Calls()[0])
}

func TestWriteTools_SettleDelayFromConfig(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f, func(cfg *config.Config) {
		cfg.Gate.SettleDelay = gate.MinSettleDelay
	})

	resp := e.MouseScroll(context.Background(), MouseScrollRequest{ProcessName: "notepad", Clicks: 2})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Contains(t, f.Rec.Calls(), "sleep 300ms")
}

func TestReadOnlyTools_NeverActivate(t *testing.T) {
	tests := []struct {
		tool   string
		params string
	}{
		{"screenshot_capture", `{}`},
		{"screenshot_region", `{"x":0,"y":0,"width":10,"height":10}`},
		{"window_capture_background", `{"process_name":"notepad"}`},
		{"window_get_rect", `{"process_name":"notepad"}`},
		{"app_list_running", ``},
		{"mouse_get_position", `null`},
		{"get_screen_size", `{}`},
		{"app_launch", `{"app_path":"calc.exe","wait_time":0}`},
		{"app_terminate", `{"process_name":"notepad"}`},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			f := desktoptest.New(notepadProcess)
			e := newTestExecutor(f)

			resp := e.Invoke(context.Background(), tt.tool, json.RawMessage(tt.params))
			require.Equal(t, "ok", resp.Status, resp.Error)
			assert.Equal(t, 0, f.Rec.Count("activate"), "calls: %v", f.Rec.Calls())
		})
	}
}

func TestForegroundCapture_ActivatesExactlyOnce(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f)

	// a previous activation must not be reused
	require.Equal(t, "ok", e.WindowActivate(context.Background(), WindowActivateRequest{ProcessName: "notepad"}).Status)
	f.Rec.Reset()

	resp := e.WindowCaptureForeground(context.Background(), WindowCaptureRequest{ProcessName: "notepad"})
	require.Equal(t, "ok", resp.Status, resp.Error)

	assert.Equal(t, []string{
		"resolve notepad",
		"activate 42",
		"sleep 500ms",
		"rect 42",
		"capture region 10,20 8x6",
	}, f.Rec.Calls())

	shot := resp.Data.(ScreenshotResponse)
	assert.Equal(t, 8, shot.Width)
	assert.Equal(t, 6, shot.Height)
	assert.Equal(t, "image/png", shot.MimeType)
}

func TestForegroundCapture_GhostProcess(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f)

	resp := e.WindowCaptureForeground(context.Background(), WindowCaptureRequest{ProcessName: "ghost_process"})

	assert.Equal(t, "WINDOW_NOT_FOUND", resp.Code)
	assert.Equal(t, 0, f.Rec.Count("capture"))
}

func TestWindowActivate_WaitTime(t *testing.T) {
	tests := []struct {
		name string
		wait *float64
		want string
	}{
		{"default", nil, "sleep 500ms"},
		{"longer than settle", floatPtr(2), "sleep 2s"},
		{"shorter than settle is raised", floatPtr(0.1), "sleep 500ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := desktoptest.New(notepadProcess)
			e := newTestExecutor(f)

			resp := e.WindowActivate(context.Background(), WindowActivateRequest{ProcessName: "notepad", WaitTime: tt.wait})
			require.Equal(t, "ok", resp.Status, resp.Error)
			assert.Equal(t, []string{"resolve notepad", "activate 42", tt.want}, f.Rec.Calls())
		})
	}
}

func TestInvocationsAreSerialized(t *testing.T) {
	f := desktoptest.New(
		types.ProcessInfo{PID: 1, Name: "one.exe"},
		types.ProcessInfo{PID: 2, Name: "two.exe"},
		types.ProcessInfo{PID: 3, Name: "three.exe"},
	)
	e := newTestExecutor(f)

	targets := []string{"one", "two", "three"}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.KeyboardPress(context.Background(), KeyboardPressRequest{ProcessName: targets[i%3], Key: "a"})
		}(i)
	}
	wg.Wait()

	calls := f.Rec.Calls()
	require.Len(t, calls, 30*4)
	for i := 0; i < len(calls); i += 4 {
		assert.Contains(t, calls[i], "resolve ")
		assert.Contains(t, calls[i+1], "activate ")
		assert.Equal(t, "sleep 500ms", calls[i+2])
		assert.Equal(t, "tap a", calls[i+3])
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	e := newTestExecutor(desktoptest.New())

	resp := e.Invoke(context.Background(), "keyboard_mash", nil)
	assert.Equal(t, "UNKNOWN_TOOL", resp.Code)
}

func TestInvoke_MalformedParams(t *testing.T) {
	f := desktoptest.New(notepadProcess)
	e := newTestExecutor(f)

	resp := e.Invoke(context.Background(), "mouse_move", json.RawMessage(`{"x":"left"}`))
	assert.Equal(t, "INVALID_PARAMS", resp.Code)
	assert.Empty(t, f.Rec.Calls())
}

func TestEveryToolHasAHandler(t *testing.T) {
	for _, tool := range gate.AllTools() {
		_, ok := tools[tool]
		assert.True(t, ok, "tool %s", tool)
		assert.NotEmpty(t, Describe(tool), "tool %s", tool)
	}

	infos := ListTools()
	assert.Len(t, infos, len(gate.AllTools()))
	assert.IsIncreasing(t, toolNames(infos))
}

func toolNames(infos []ToolInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", gate.ErrWindowNotFound), "WINDOW_NOT_FOUND"},
		{fmt.Errorf("wrap: %w", gate.ErrCaptureFailed), "CAPTURE_FAILED"},
		{invalidParams("bad"), "INVALID_PARAMS"},
		{fmt.Errorf("%w: boom", ErrProcessFailed), "PROCESS_FAILED"},
		{errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}
