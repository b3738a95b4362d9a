package types

import "fmt"

// Window identifies a live top-level window resolved from a process name
// fragment. Handle is the native window handle (HWND) where the platform
// has one and 0 otherwise.
type Window struct {
	PID    int     `json:"pid"`
	Name   string  `json:"name"`
	Title  string  `json:"title,omitempty"`
	Handle uintptr `json:"-"`
}

func (w Window) String() string {
	if w.Handle != 0 {
		return fmt.Sprintf("%s (pid %d, hwnd 0x%x)", w.Name, w.PID, w.Handle)
	}
	return fmt.Sprintf("%s (pid %d)", w.Name, w.PID)
}
