// Package api — configuration endpoints.
package api

import (
	"net/http"

	"github.com/raghuchilukamari/investor-gps/internal/config"
)

// sanitizedConfig is the view of the running configuration exposed over the
// API. Provider credentials are reported via /config/keys (masked), never
// returned raw.
type sanitizedConfig struct {
	API      config.APIConfig      `json:"api"`
	Database config.DatabaseConfig `json:"database"`
	Macro    config.MacroConfig    `json:"macro"`
	Reaction config.ReactionConfig `json:"reaction"`
	News     config.NewsConfig     `json:"news"`
	Logging  config.LoggingConfig  `json:"logging"`
}

// handleGetConfig returns the current (running) configuration with
// credentials stripped.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: sanitizedConfig{
			API:      s.cfg.API,
			Database: s.cfg.Database,
			Macro:    s.cfg.Macro,
			Reaction: s.cfg.Reaction,
			News:     s.cfg.News,
			Logging:  s.cfg.Logging,
		},
	})
}

// handleGetConfigKeys returns the status of the upstream provider credentials.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	keys := config.CheckAPIKeys(s.cfg)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    keys,
	})
}
