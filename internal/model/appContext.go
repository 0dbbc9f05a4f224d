package model

// AppInfo is the identity the agent reports in logs and on /health.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Author  string `json:"author"`
}
