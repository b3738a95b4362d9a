package desktop

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/go-vgo/robotgo"
	"github.com/mobile-next/wintest/utils"
)

// ExecProcessManager launches detached processes with os/exec and stops
// them with robotgo.
type ExecProcessManager struct{}

func NewProcessManager() *ExecProcessManager {
	return &ExecProcessManager{}
}

// Launch starts path detached from this process and returns its PID.
func (m *ExecProcessManager) Launch(ctx context.Context, path string, args []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// not CommandContext: the launched app must outlive the request
	cmd := exec.Command(path, args...)
	utils.ConfigureDetachedProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to launch %s: %w", path, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		utils.Verbose("failed to release process %d: %v", pid, err)
	}

	utils.Verbose("launched %s with pid %d", path, pid)
	return pid, nil
}

func (m *ExecProcessManager) Terminate(pid int) error {
	if err := robotgo.Kill(pid); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}

func (m *ExecProcessManager) Exists(pid int) bool {
	exists, err := robotgo.PidExists(pid)
	return err == nil && exists
}
