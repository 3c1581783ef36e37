package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveExplicitHint(t *testing.T) {
	root := t.TempDir()
	resolver := NewWorkspaceResolver()

	ws := resolver.Resolve(root)
	if ws.Root != root {
		t.Errorf("root = %q, want %q", ws.Root, root)
	}
	if ws.Dir != filepath.Join(root, ".mnemo") {
		t.Errorf("dir = %q", ws.Dir)
	}
}

func TestResolveNearestAncestor(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".mnemo"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "services", "billing")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	ws, ok := NewWorkspaceResolver().Project()
	if !ok {
		t.Fatal("expected a project workspace above the cwd")
	}
	// Paths compare via EvalSymlinks because temp dirs may be symlinked.
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(ws.Root)
	if gotRoot != wantRoot {
		t.Errorf("root = %q, want %q", gotRoot, wantRoot)
	}
}

func TestResolveFallsBackToGlobal(t *testing.T) {
	resolver := &WorkspaceResolver{homeDir: "/home/someone"}

	ws := resolver.Global()
	if ws.Dir != "/home/someone/.mnemo" {
		t.Errorf("global dir = %q", ws.Dir)
	}
}

func TestInitWorkspace(t *testing.T) {
	root := t.TempDir()
	ws := NewWorkspaceResolver().Resolve(root)

	if ws.Exists() {
		t.Fatal("workspace should not exist yet")
	}
	if err := InitWorkspace(ws); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !ws.Exists() {
		t.Fatal("workspace missing after init")
	}

	if _, err := os.Stat(ws.DBPath()); err != nil {
		t.Errorf("database not created: %v", err)
	}
	if _, err := os.Stat(ws.ConfigPath()); err != nil {
		t.Errorf("config not created: %v", err)
	}

	// Re-init must not clobber anything.
	if err := SaveConfig(ws, &Config{RecallLimit: 3}); err != nil {
		t.Fatal(err)
	}
	if err := InitWorkspace(ws); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	cfg, err := LoadConfig(ws)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RecallLimit != 3 {
		t.Errorf("re-init overwrote config: limit = %d", cfg.RecallLimit)
	}
}
