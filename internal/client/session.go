package client

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tokenFileName = ".toozhub_token"

// Session holds the bearer token for a CLI or frontend process. Token
// source priority: in-memory value, then the token file in $HOME, then the
// TOOZHUB_TOKEN environment variable (captured once, then persisted).
type Session struct {
	mu    sync.Mutex
	token string
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(home, tokenFileName)
}

// Token returns the current bearer token, loading it from disk or the
// environment on first use. Empty means logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token
	}
	if data, err := os.ReadFile(tokenPath()); err == nil {
		s.token = strings.TrimSpace(string(data))
		return s.token
	}
	if env := os.Getenv("TOOZHUB_TOKEN"); env != "" {
		s.token = env
		_ = os.WriteFile(tokenPath(), []byte(env), 0600)
	}
	return s.token
}

// Save stores a fresh token in memory and on disk.
func (s *Session) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// Clear forgets the token in memory and on disk.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	_ = os.Remove(tokenPath())
}

// LoggedIn reports whether a token is available.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Probe validates a stored token by issuing a harmless authenticated read.
// A failing probe forces the logged-out state.
func Probe(c *Client) bool {
	if !c.Session.LoggedIn() {
		return false
	}
	if err := c.Get("/admin-api/overview", nil); err != nil {
		c.Session.Clear()
		return false
	}
	return true
}
