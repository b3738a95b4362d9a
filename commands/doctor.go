package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kbinani/screenshot"
	"github.com/mobile-next/wintest/types"
	"github.com/mobile-next/wintest/utils"
)

type DoctorInfo struct {
	WintestVersion string      `json:"wintest_version"`
	OS             string      `json:"os"`
	OSVersion      string      `json:"os_version"`
	Arch           string      `json:"arch"`
	Displays       int         `json:"displays"`
	ScreenSize     *types.Size `json:"screen_size,omitempty"`
	ConfigPath     string      `json:"config_path,omitempty"`
	SettleDelay    string      `json:"settle_delay"`
	DefaultTarget  string      `json:"default_target,omitempty"`
	OutputDir      string      `json:"output_dir"`
	ServerListen   string      `json:"server_listen"`
	Warnings       []string    `json:"warnings,omitempty"`
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "windows":
		cmd := exec.Command("cmd", "/c", "ver")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "darwin":
		cmd := exec.Command("sw_vers", "-productVersion")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

// DoctorCommand performs system diagnostics and returns information about the environment
func (e *Executor) DoctorCommand(version string) *CommandResponse {
	info := DoctorInfo{
		WintestVersion: version,
		OS:             runtime.GOOS,
		OSVersion:      getOSVersion(),
		Arch:           runtime.GOARCH,
		Displays:       screenshot.NumActiveDisplays(),
		ConfigPath:     e.cfg.Path,
		SettleDelay:    e.gate.SettleDelay().String(),
		DefaultTarget:  e.cfg.Gate.DefaultTarget,
		OutputDir:      e.cfg.Capture.OutputDir,
		ServerListen:   e.cfg.Server.Listen,
	}

	if size, err := e.desktop.Capture.ScreenSize(); err == nil {
		info.ScreenSize = &size
	} else {
		info.Warnings = append(info.Warnings, "screen size unavailable: "+err.Error())
	}

	if runtime.GOOS != "windows" {
		info.Warnings = append(info.Warnings, "background window capture and mouse4/mouse5 are only available on Windows")
	}
	if addr, err := utils.NormalizeListenAddr(e.cfg.Server.Listen); err != nil {
		info.Warnings = append(info.Warnings, "server listen address is invalid: "+err.Error())
	} else if !utils.IsAddrAvailable(addr) {
		info.Warnings = append(info.Warnings, addr+" is in use; 'server start' will fail unless a wintest server is already running there")
	}
	if info.Displays == 0 {
		info.Warnings = append(info.Warnings, "no active displays found; capture tools will fail")
	}

	return NewSuccessResponse(info)
}
