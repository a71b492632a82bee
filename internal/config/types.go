package config

const CurrentVersion = 1

// Config holds the persisted workspace preferences.
type Config struct {
	Version        int    `json:"version"`
	CodexHome      string `json:"codexHome,omitempty"`
	ProjectPanePct int    `json:"projectPanePct,omitempty"`
	SessionPanePct int    `json:"sessionPanePct,omitempty"`
	PreviewMode    string `json:"previewMode,omitempty"`
}
