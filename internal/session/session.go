// Package session persists the authentication credential, the cached user
// summary, and small UI preferences across process restarts. It is the Go
// rendition of the browser's durable local storage: fixed keys, no expiry,
// and a missing key is never an error.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const stateFile = "session.json"

// UserSummary is the identity summary cached alongside the bearer token.
type UserSummary struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Email       string `json:"email,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Credential is a bearer token plus the cached identity summary.
type Credential struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// state is the on-disk shape. The sidebar preference shares the file but is
// UI state, not session state: it survives ClearAuth.
type state struct {
	Credential  *Credential `json:"credential,omitempty"`
	Identity    string      `json:"identity,omitempty"`
	SidebarOpen *bool       `json:"sidebar_open,omitempty"`
}

// Store is a durable, file-backed session store. Safe for concurrent use.
type Store struct {
	path string

	mu   sync.Mutex
	data state
}

// Open loads (or initializes) the session store under the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	s := &Store{path: filepath.Join(dir, stateFile)}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("decoding session state: %w", err)
		}
	}
	return s, nil
}

// flush writes the current state. Caller must hold s.mu.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Credential returns the stored credential, or nil if none is present.
func (s *Store) Credential() *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Credential == nil {
		return nil
	}
	cred := *s.data.Credential
	return &cred
}

// SetCredential persists the credential and its identity.
func (s *Store) SetCredential(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Credential = &cred
	if cred.User.ID != "" {
		s.data.Identity = cred.User.ID
	}
	return s.flush()
}

// ClearCredential removes the credential but leaves the identity untouched.
func (s *Store) ClearCredential() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Credential = nil
	return s.flush()
}

// Identity returns the stored identity key, or "" if none is present.
func (s *Store) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Identity
}

// SetIdentity persists a bare identity without a credential. This is the
// secondary access path used for testing and bootstrapping.
func (s *Store) SetIdentity(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Identity = identity
	return s.flush()
}

// ClearIdentity removes the stored identity.
func (s *Store) ClearIdentity() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Identity = ""
	return s.flush()
}

// ClearAuth removes credential and identity together, preserving UI
// preferences. Called on logout.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Credential = nil
	s.data.Identity = ""
	return s.flush()
}

// SidebarOpen reports the persisted sidebar preference. Defaults to true.
func (s *Store) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.SidebarOpen == nil {
		return true
	}
	return *s.data.SidebarOpen
}

// SetSidebarOpen persists the sidebar preference.
func (s *Store) SetSidebarOpen(open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.SidebarOpen = &open
	return s.flush()
}
