package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidServeMode is returned for a --serve-mode value other than monolith, web or api.
var ErrInvalidServeMode = errors.New("invalid serve mode")

// ServeMode selects which route groups the server mounts.
// Web mounts the per-shop scripts and booking pages, API mounts the JSON
// endpoints and metrics, and monolith mounts both.
type ServeMode string

const (
	ServeModeMonolith ServeMode = "monolith"
	ServeModeWeb      ServeMode = "web"
	ServeModeAPI      ServeMode = "api"
)

var knownServeModes = map[ServeMode]struct{}{
	ServeModeMonolith: {},
	ServeModeWeb:      {},
	ServeModeAPI:      {},
}

// ParseServeMode normalizes case and whitespace. An empty value selects ServeModeMonolith.
func ParseServeMode(rawInput string) (ServeMode, error) {
	candidate := ServeMode(strings.ToLower(strings.TrimSpace(rawInput)))
	if candidate == "" {
		return ServeModeMonolith, nil
	}
	if _, known := knownServeModes[candidate]; !known {
		return "", fmt.Errorf("%w: %q", ErrInvalidServeMode, rawInput)
	}
	return candidate, nil
}

func (mode ServeMode) servesWeb() bool {
	return mode != ServeModeAPI
}

func (mode ServeMode) servesAPI() bool {
	return mode != ServeModeWeb
}
