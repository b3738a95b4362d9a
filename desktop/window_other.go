//go:build !windows

package desktop

import "image"

// Without native window handles every process with a matching name is a
// candidate; robotgo performs activation by PID.
func topLevelWindow(pid int) (uintptr, bool) {
	return 0, true
}

func restoreWindow(hwnd uintptr) {}

func captureWindow(hwnd uintptr) (image.Image, error) {
	return nil, ErrUnsupported
}

func sendXButton(button int, down bool) error {
	return ErrUnsupported
}
