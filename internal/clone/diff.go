package clone

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/octoharvest/octoharvest/internal/errors"
)

// FileChange describes one file's action within a single commit, the unit
// the File Action processor consumes.
type FileChange struct {
	Path         string
	OldPath      string // set only when ChangeType is "RENAMED" or "COPIED"
	ChangeType   string // ADDED, MODIFIED, DELETED, RENAMED, COPIED
	AddedLines   int
	DeletedLines int
	Diff         string
}

// CommitFileChanges returns every file touched by commit, comparing it
// against its first parent (or against the empty tree for a root commit).
func (r *Repo) CommitFileChanges(ctx context.Context, hash string, parentHashes []string) ([]FileChange, error) {
	against := "4b825dc642cb6eb9a060e54bf8d69288fbee4904" // git's canonical empty-tree hash
	if len(parentHashes) > 0 {
		against = parentHashes[0]
	}

	statusCmd := exec.CommandContext(ctx, "git", "diff", "--name-status", "-M", "-C", against, hash)
	statusCmd.Dir = r.Dir
	statusOut, err := statusCmd.Output()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "git diff --name-status %s %s", against, hash)
	}

	numstatCmd := exec.CommandContext(ctx, "git", "diff", "--numstat", "-M", "-C", against, hash)
	numstatCmd.Dir = r.Dir
	numstatOut, err := numstatCmd.Output()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "git diff --numstat %s %s", against, hash)
	}
	addedByPath, deletedByPath := parseNumstat(string(numstatOut))

	var changes []FileChange
	for _, line := range strings.Split(strings.TrimSpace(string(statusOut)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		change := FileChange{ChangeType: changeTypeFromCode(fields[0])}
		switch {
		case len(fields) == 3 && (fields[0][0] == 'R' || fields[0][0] == 'C'):
			change.OldPath = fields[1]
			change.Path = fields[2]
		default:
			change.Path = fields[1]
		}
		change.AddedLines = addedByPath[change.Path]
		change.DeletedLines = deletedByPath[change.Path]

		diff, err := r.fileDiff(ctx, against, hash, change.Path)
		if err == nil {
			change.Diff = diff
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func (r *Repo) fileDiff(ctx context.Context, against, hash, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", against, hash, "--", path)
	cmd.Dir = r.Dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func changeTypeFromCode(code string) string {
	switch code[0] {
	case 'A':
		return "ADDED"
	case 'D':
		return "DELETED"
	case 'R':
		return "RENAMED"
	case 'C':
		return "COPIED"
	default:
		return "MODIFIED"
	}
}

func parseNumstat(output string) (added, deleted map[string]int) {
	added = make(map[string]int)
	deleted = make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		path := fields[2]
		if idx := strings.Index(path, "{"); idx >= 0 {
			// rename/copy "a/{old => new}/b" numstat form; just keep the new path.
			if end := strings.Index(path[idx:], "}"); end >= 0 {
				inner := path[idx+1 : idx+end]
				if arrow := strings.Index(inner, " => "); arrow >= 0 {
					inner = inner[arrow+len(" => "):]
				}
				path = strings.ReplaceAll(path[:idx]+inner+path[idx+end+1:], "//", "/")
			}
		}
		added[path] = atoiOrZero(fields[0])
		deleted[path] = atoiOrZero(fields[1])
	}
	return added, deleted
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
