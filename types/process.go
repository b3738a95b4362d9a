package types

// ProcessInfo describes a running application as reported by app_list_running.
type ProcessInfo struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Launched bool   `json:"launched,omitempty"`
}
