package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

// AppLaunchRequest represents the parameters for launching an application.
// WaitTime is how long to wait for the application to start, in seconds.
type AppLaunchRequest struct {
	AppPath  string   `json:"app_path" jsonschema:"executable path or name on PATH, e.g. notepad.exe"`
	Args     []string `json:"args,omitempty" jsonschema:"command line arguments"`
	WaitTime *float64 `json:"wait_time,omitempty" jsonschema:"seconds to wait for the application to start, default 1"`
}

// AppTerminateRequest represents the parameters for stopping an application
type AppTerminateRequest struct {
	ProcessName string `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the process name"`
}

// AppListRequest filters the running application list by name fragment
type AppListRequest struct {
	Filter string `json:"filter,omitempty" jsonschema:"only list processes whose name contains this fragment"`
}

type AppResult struct {
	Message string            `json:"message"`
	Process types.ProcessInfo `json:"process"`

	// WaitInterrupted is set when the caller went away before wait_time
	// passed. The application was started regardless.
	WaitInterrupted bool `json:"wait_interrupted,omitempty"`
}

type AppListResult struct {
	Processes []types.ProcessInfo `json:"processes"`
	Count     int                 `json:"count"`
}

// AppLaunch starts an application. It never activates the new window: the
// first write tool aimed at it does that.
func (e *Executor) AppLaunch(ctx context.Context, req AppLaunchRequest) *CommandResponse {
	path := strings.TrimSpace(req.AppPath)
	if path == "" {
		return NewErrorResponse(invalidParams("app_path is required"))
	}

	wait, err := e.optionalDelay("wait_time", req.WaitTime, e.cfg.Apps.LaunchWait)
	if err != nil {
		return NewErrorResponse(err)
	}

	var info types.ProcessInfo
	var waitErr error
	err = e.run(ctx, gate.ToolAppLaunch, "", func(ctx context.Context, _ types.Window) error {
		pid, err := e.desktop.Processes.Launch(ctx, path, req.Args)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProcessFailed, err)
		}

		info = types.ProcessInfo{PID: pid, Name: filepath.Base(path), Launched: true}
		e.launches.Register(info)

		// the process is running now, so a cut short wait is still a launch
		waitErr = e.sleep(ctx, wait)
		return nil
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	result := AppResult{
		Message: fmt.Sprintf("Launched %s with pid %d", path, info.PID),
		Process: info,
	}
	if waitErr != nil {
		result.Message = fmt.Sprintf("%s, startup wait interrupted: %v", result.Message, waitErr)
		result.WaitInterrupted = true
	}
	return NewSuccessResponse(result)
}

// AppTerminate stops the first running process whose name contains
// process_name. It never falls back to the default target.
func (e *Executor) AppTerminate(ctx context.Context, req AppTerminateRequest) *CommandResponse {
	target := strings.TrimSpace(req.ProcessName)
	if target == "" {
		return NewErrorResponse(invalidParams("process_name is required to terminate an application"))
	}

	var info types.ProcessInfo
	err := e.run(ctx, gate.ToolAppTerminate, target, func(ctx context.Context, _ types.Window) error {
		procs, err := e.desktop.Windows.List(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProcessFailed, err)
		}

		matches := filterProcesses(procs, target)
		if len(matches) == 0 {
			return fmt.Errorf("%w: no running process matches '%s'", gate.ErrWindowNotFound, target)
		}
		info = matches[0]

		if err := e.desktop.Processes.Terminate(info.PID); err != nil {
			return fmt.Errorf("%w: %w", ErrProcessFailed, err)
		}
		e.launches.Forget(info.PID)
		return nil
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(AppResult{
		Message: fmt.Sprintf("Terminated %s (pid %d)", info.Name, info.PID),
		Process: info,
	})
}

// AppListRunning lists running processes, marking the ones app_launch started.
func (e *Executor) AppListRunning(ctx context.Context, req AppListRequest) *CommandResponse {
	var procs []types.ProcessInfo
	err := e.run(ctx, gate.ToolAppListRunning, "", func(ctx context.Context, _ types.Window) error {
		all, err := e.desktop.Windows.List(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProcessFailed, err)
		}
		procs = filterProcesses(all, req.Filter)
		return nil
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	for i := range procs {
		procs[i].Launched = e.launches.Contains(procs[i].PID)
	}

	return NewSuccessResponse(AppListResult{
		Processes: procs,
		Count:     len(procs),
	})
}

// filterProcesses keeps processes whose name contains fragment,
// case-insensitively. An empty fragment keeps everything.
func filterProcesses(procs []types.ProcessInfo, fragment string) []types.ProcessInfo {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	out := make([]types.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
