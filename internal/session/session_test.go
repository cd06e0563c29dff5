package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_EmptyDirectory(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Credential() != nil {
		t.Error("fresh store should have no credential")
	}
	if s.Identity() != "" {
		t.Error("fresh store should have no identity")
	}
	if !s.SidebarOpen() {
		t.Error("sidebar preference defaults to open")
	}
}

func TestCredential_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	cred := Credential{
		Token: "token-abc",
		User:  UserSummary{ID: "user-1", PhoneNumber: "9876543210", FullName: "Asha"},
	}
	if err := s.SetCredential(cred); err != nil {
		t.Fatalf("set credential failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got := reopened.Credential()
	if got == nil {
		t.Fatal("credential lost across reopen")
	}
	if got.Token != "token-abc" || got.User.ID != "user-1" {
		t.Errorf("credential mismatch: %+v", got)
	}
	// Setting a credential also records the identity.
	if reopened.Identity() != "user-1" {
		t.Errorf("expected identity user-1, got %q", reopened.Identity())
	}
}

func TestBareIdentity(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.SetIdentity("user-9"); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Identity() != "user-9" {
		t.Errorf("expected user-9, got %q", reopened.Identity())
	}
	if reopened.Credential() != nil {
		t.Error("bare identity must not fabricate a credential")
	}
}

func TestClearAuth_PreservesUIPreferences(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.SetCredential(Credential{Token: "t", User: UserSummary{ID: "user-1"}}); err != nil {
		t.Fatalf("set credential failed: %v", err)
	}
	if err := s.SetSidebarOpen(false); err != nil {
		t.Fatalf("set sidebar failed: %v", err)
	}

	if err := s.ClearAuth(); err != nil {
		t.Fatalf("clear auth failed: %v", err)
	}

	if s.Credential() != nil {
		t.Error("credential should be cleared")
	}
	if s.Identity() != "" {
		t.Error("identity should be cleared")
	}
	if s.SidebarOpen() {
		t.Error("sidebar preference must survive logout")
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.SidebarOpen() {
		t.Error("sidebar preference must survive logout across reopen")
	}
}

func TestCredentialCopyIsIsolated(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.SetCredential(Credential{Token: "t", User: UserSummary{ID: "user-1"}}); err != nil {
		t.Fatalf("set credential failed: %v", err)
	}

	got := s.Credential()
	got.Token = "mutated"

	if s.Credential().Token != "t" {
		t.Error("mutating the returned credential must not affect the store")
	}
}

func TestStateFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.SetIdentity("user-1"); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, stateFile))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("state file should be 0600, got %o", perm)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, stateFile), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Open(dir); err == nil {
		t.Fatal("expected error for corrupt state file")
	}
}
