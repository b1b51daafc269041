package credstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "taxrefund")
}

func Test_cfgDir_And_DefaultPath(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	s := New()
	if !strings.HasPrefix(s.path, base) || !strings.HasSuffix(s.path, "token.json") {
		t.Fatalf("token path unexpected: %s", s.path)
	}
}

func Test_ReadWrite_RoundTrip(t *testing.T) {
	s := NewAt(filepath.Join(t.TempDir(), "token.json"))

	if tok, ok := s.Read(); ok || tok != "" {
		t.Fatalf("empty store should be absent, got %q", tok)
	}
	if err := s.Write("tok-1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tok, ok := s.Read()
	if !ok || tok != "tok-1" {
		t.Fatalf("Read after Write: tok=%q ok=%v", tok, ok)
	}

	// write replaces the prior value
	if err := s.Write("tok-2"); err != nil {
		t.Fatalf("Write replace: %v", err)
	}
	if tok, _ := s.Read(); tok != "tok-2" {
		t.Fatalf("replaced token: %q", tok)
	}
}

func Test_Clear_Idempotent(t *testing.T) {
	s := NewAt(filepath.Join(t.TempDir(), "token.json"))
	if err := s.Write("tok"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Clear(); err != nil {
			t.Fatalf("Clear #%d: %v", i, err)
		}
	}
	if _, ok := s.Read(); ok {
		t.Fatalf("token should be absent after Clear")
	}
}

func Test_Read_CorruptFile_IsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	_ = os.WriteFile(path, []byte("not json"), 0o600)
	s := NewAt(path)
	if _, ok := s.Read(); ok {
		t.Fatalf("corrupt token file must read as absent")
	}
}
