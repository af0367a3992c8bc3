package scanner

import (
	"fmt"
	"os/exec"
	"strings"
)

// ChangeStatus is the git name-status letter for a changed file.
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "A"
	StatusModified ChangeStatus = "M"
	StatusDeleted  ChangeStatus = "D"
)

// Change is a single file change within a commit.
type Change struct {
	Status ChangeStatus
	Path   string
}

// ListCommits returns all commit hashes reachable from HEAD, oldest first.
func ListCommits(root string) ([]string, error) {
	out, err := gitOutput(root, "rev-list", "--reverse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("rev-list: %w", err)
	}

	var commits []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			commits = append(commits, line)
		}
	}
	return commits, nil
}

// ChangedFiles returns the files touched by a commit relative to its first
// parent. Root commits report all their files as added.
func ChangedFiles(root, commit string) ([]Change, error) {
	out, err := gitOutput(root, "diff-tree", "-r", "--root", "--no-commit-id", "--name-status", commit)
	if err != nil {
		return nil, fmt.Errorf("diff-tree %s: %w", commit, err)
	}

	return parseNameStatus(out), nil
}

// parseNameStatus parses `git diff-tree --name-status` output. Rename and
// copy lines carry a similarity score and two paths (e.g. "R100\told\tnew");
// a rename deletes the old path and adds the new one, a copy only adds.
func parseNameStatus(out string) []Change {
	var changes []Change
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		switch status := ChangeStatus(parts[0][:1]); status {
		case "R":
			if len(parts) < 3 {
				continue
			}
			changes = append(changes,
				Change{Status: StatusDeleted, Path: parts[1]},
				Change{Status: StatusAdded, Path: parts[2]})
		case "C":
			if len(parts) < 3 {
				continue
			}
			changes = append(changes, Change{Status: StatusAdded, Path: parts[2]})
		default:
			changes = append(changes, Change{Status: status, Path: parts[1]})
		}
	}
	return changes
}

// ShowBlob returns the content of a file at a specific commit.
func ShowBlob(root, commit, path string) ([]byte, error) {
	cmd := exec.Command("git", "-C", root, "show", commit+":"+path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("show %s:%s: %w", commit, path, err)
	}
	return out, nil
}

// IsRepository reports whether root is inside a git work tree.
func IsRepository(root string) bool {
	out, err := gitOutput(root, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

func gitOutput(root string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
