package hooks

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// preCommitScript is the full content of the installed hook. The file is
// always replaced as a whole so repeated installs converge on this exact
// content.
const preCommitScript = `#!/bin/sh
# Installed by labctl. Runs the containerized lint service before each commit.
set -e
exec labctl lint
`

// HookName is the git hook labctl manages
const HookName = "pre-commit"

// Install writes the pre-commit hook into the repository at repoPath,
// overwriting any previous content, and marks it executable. Returns the
// path of the installed hook. Safe to re-run.
func Install(repoPath string) (string, error) {
	gitDir, err := resolveGitDir(repoPath)
	if err != nil {
		return "", err
	}
	return InstallAt(filepath.Join(gitDir, "hooks"))
}

// InstallAt writes the hook into the given hooks directory.
func InstallAt(hooksDir string) (string, error) {
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, HookName)
	if err := os.WriteFile(hookPath, []byte(preCommitScript), 0755); err != nil {
		return "", fmt.Errorf("failed to write hook: %w", err)
	}

	// WriteFile only applies the mode on creation; force it for overwrites.
	if err := os.Chmod(hookPath, 0755); err != nil {
		return "", fmt.Errorf("failed to mark hook executable: %w", err)
	}

	return hookPath, nil
}

// Content returns the exact hook content Install writes.
func Content() string {
	return preCommitScript
}

// resolveGitDir locates the .git directory of the repository at repoPath.
func resolveGitDir(repoPath string) (string, error) {
	cmd := exec.Command("git", "-C", repoPath, "rev-parse", "--git-dir")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository: %s", repoPath)
	}

	gitDir := strings.TrimSpace(string(output))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(repoPath, gitDir)
	}
	return gitDir, nil
}
