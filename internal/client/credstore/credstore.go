// Package credstore persists the opaque bearer credential across client runs.
//
// Exactly one credential is stored at a time; writing replaces any prior
// value and clearing an absent credential is a no-op. The token is never
// inspected here: validity is the server's call.
package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type tokenFile struct {
	AccessToken string `json:"access_token"`
}

// Store is a file-backed credential store rooted in the user config dir.
type Store struct {
	path string
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "taxrefund")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taxrefund")
}

// New returns a store using the default token path under the user config dir.
func New() *Store {
	return &Store{path: filepath.Join(cfgDir(), "token.json")}
}

// NewAt returns a store persisting to the given file path.
func NewAt(path string) *Store {
	return &Store{path: path}
}

// Read returns the stored credential. Absence (missing or unreadable file,
// empty token) is a normal state reported via ok=false, never an error.
func (s *Store) Read() (string, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil || tf.AccessToken == "" {
		return "", false
	}
	return tf.AccessToken, true
}

// Write durably replaces any prior credential. The write goes through a
// temp file and rename so a crash never leaves a torn token on disk.
func (s *Store) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: token}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the credential. Clearing an absent credential is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
