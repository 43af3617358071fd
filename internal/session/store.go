// Package session persists the browser identity (cookies and localStorage)
// between runs so a login survives restarts.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/proto"
)

// State is the serialized session. The layout matches Playwright's
// storage state file.
type State struct {
	Cookies []*proto.NetworkCookie `json:"cookies"`
	Origins []Origin               `json:"origins"`
}

// Origin holds the localStorage of one origin.
type Origin struct {
	Origin       string  `json:"origin"`
	LocalStorage []Entry `json:"localStorage"`
}

// Entry is one localStorage item.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Empty reports whether s carries no cookies and no storage.
func (s *State) Empty() bool {
	return s == nil || (len(s.Cookies) == 0 && len(s.Origins) == 0)
}

// Read decodes the state file at path.
func Read(path string) (*State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // configured state path
	if err != nil {
		return nil, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session state %s: %w", path, err)
	}
	return &s, nil
}

// Load is Read that never fails: a missing, unreadable or malformed file
// yields an empty State.
func Load(path string) *State {
	s, err := Read(path)
	if err != nil {
		return &State{}
	}
	return s
}

// Save overwrites path with s. The file is written next to path and
// renamed into place so a failed write never leaves a truncated state.
func Save(path string, s *State) error {
	if s == nil {
		s = &State{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session state dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session state: %w", err)
	}
	return nil
}
