package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

const workspaceDirName = ".mnemo"

// Workspace is the directory holding one memory engine instance: the
// database file, config, and snapshot history.
type Workspace struct {
	Root string // directory the workspace serves
	Dir  string // the .mnemo directory itself
}

func (w Workspace) DBPath() string {
	return filepath.Join(w.Dir, "memory.db")
}

func (w Workspace) ConfigPath() string {
	return filepath.Join(w.Dir, "config.yaml")
}

func (w Workspace) SnapshotPath() string {
	return filepath.Join(w.Dir, "snapshots")
}

func (w Workspace) Exists() bool {
	info, err := os.Stat(w.Dir)
	return err == nil && info.IsDir()
}

type WorkspaceResolver struct {
	homeDir string
}

func NewWorkspaceResolver() *WorkspaceResolver {
	home, _ := os.UserHomeDir()
	return &WorkspaceResolver{homeDir: home}
}

func (r *WorkspaceResolver) Cwd() (string, error) {
	return os.Getwd()
}

// Resolve picks the workspace: an explicit hint wins, then the nearest
// ancestor directory containing .mnemo, then the global workspace
// under the home directory.
func (r *WorkspaceResolver) Resolve(hint string) Workspace {
	if hint != "" {
		return Workspace{Root: hint, Dir: filepath.Join(hint, workspaceDirName)}
	}

	if ws, ok := r.Project(); ok {
		return ws
	}
	return r.Global()
}

func (r *WorkspaceResolver) Global() Workspace {
	return Workspace{
		Root: r.homeDir,
		Dir:  filepath.Join(r.homeDir, workspaceDirName),
	}
}

func (r *WorkspaceResolver) Project() (Workspace, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, false
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		wsDir := filepath.Join(dir, workspaceDirName)
		if info, err := os.Stat(wsDir); err == nil && info.IsDir() {
			return Workspace{Root: dir, Dir: wsDir}, true
		}
		if dir == filepath.Dir(dir) {
			return Workspace{}, false
		}
	}
}

// InitWorkspace creates the workspace directory, the database schema,
// and a default config file. Safe to call on an existing workspace.
func InitWorkspace(ws Workspace) error {
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}

	store, err := OpenStore(ws.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	if _, err := os.Stat(ws.ConfigPath()); os.IsNotExist(err) {
		if err := SaveConfig(ws, DefaultConfig()); err != nil {
			return err
		}
	}
	return nil
}
