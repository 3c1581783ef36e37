package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	snapshotFile   = "export.json"
	snapshotAuthor = "mnemo"
	snapshotEmail  = "mnemo@local"
)

// SnapshotRepo keeps a git history of export dumps inside the
// workspace, so every backup is an auditable commit.
type SnapshotRepo struct {
	repo *git.Repository
	path string
}

// OpenSnapshotRepo opens the snapshot repository for a workspace,
// initializing it on first use.
func OpenSnapshotRepo(ws Workspace) (*SnapshotRepo, error) {
	path := ws.SnapshotPath()
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	repo, err := git.PlainOpen(path)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(path, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot repo: %w", err)
	}

	return &SnapshotRepo{repo: repo, path: path}, nil
}

// Commit writes the export payload and commits it. Returns the commit
// hash.
func (s *SnapshotRepo) Commit(data []byte, message string) (string, error) {
	file := filepath.Join(s.path, snapshotFile)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("get worktree: %w", err)
	}

	if _, err := worktree.Add(snapshotFile); err != nil {
		return "", fmt.Errorf("stage snapshot: %w", err)
	}

	if message == "" {
		message = fmt.Sprintf("snapshot: %s", time.Now().UTC().Format(time.RFC3339))
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  snapshotAuthor,
			Email: snapshotEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}

	return hash.String(), nil
}

// Log returns snapshot commit history, newest first.
func (s *SnapshotRepo) Log(limit int) ([]SnapshotCommit, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, nil // no snapshots yet
	}

	iter, err := s.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var commits []SnapshotCommit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		commits = append(commits, SnapshotCommit{
			Hash:      c.Hash.String(),
			Message:   c.Message,
			Timestamp: c.Author.When,
		})
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, err
	}
	return commits, nil
}

type SnapshotCommit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
