package clone

import (
	"context"
	"os/exec"
	"strings"

	"github.com/octoharvest/octoharvest/internal/errors"
)

// CommitRecord is one commit's metadata as read off disk, before any
// GitHub-API-sourced fields (author login resolution, etc.) are merged in.
type CommitRecord struct {
	Hash       string
	ParentHashes []string
	Message    string
	AuthorName string
	AuthorDate string
	IsMerge    bool
}

// commitLogFormat emits one line per commit: hash, parents (space
// separated), author name, author date, then the full subject+body
// separated by a unit separator so multi-line messages stay on one record.
const commitLogFormat = `%H%x1f%P%x1f%an%x1f%aI%x1f%B%x1e`

// ListCommits returns every commit reachable from branch, oldest first.
func (r *Repo) ListCommits(ctx context.Context, branch string) ([]CommitRecord, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--reverse", "--pretty=format:"+commitLogFormat, branch)
	cmd.Dir = r.Dir
	output, err := cmd.Output()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "git log on %s", branch)
	}

	var commits []CommitRecord
	for _, record := range strings.Split(string(output), "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, "\x1f", 5)
		if len(fields) != 5 {
			continue
		}
		parents := strings.Fields(fields[1])
		commits = append(commits, CommitRecord{
			Hash:         fields[0],
			ParentHashes: parents,
			AuthorName:   fields[2],
			AuthorDate:   fields[3],
			Message:      strings.TrimRight(fields[4], "\n"),
			IsMerge:      len(parents) > 1,
		})
	}
	return commits, nil
}

// ListBranches returns every remote-tracking branch name (without the
// "origin/" prefix), deduplicated, HEAD excluded.
func (r *Repo) ListBranches(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "branch", "-r", "--format=%(refname:short)")
	cmd.Dir = r.Dir
	output, err := cmd.Output()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "git branch -r")
	}

	var branches []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, "/HEAD") {
			continue
		}
		branches = append(branches, strings.TrimPrefix(line, "origin/"))
	}
	return branches, nil
}

// FileHistory returns every historical path a file has held, current path
// first, using git log --follow to track renames across commits.
func (r *Repo) FileHistory(ctx context.Context, filePath string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--follow", "--name-only", "--pretty=format:", "--", filePath)
	cmd.Dir = r.Dir
	output, err := cmd.Output()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "git log --follow for %s", filePath)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// ParentCount reports how many parents a commit has, used to decide
// whether it is a merge commit when ListCommits wasn't already consulted.
func (r *Repo) ParentCount(ctx context.Context, hash string) (int, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-list", "--parents", "-n", "1", hash)
	cmd.Dir = r.Dir
	output, err := cmd.Output()
	if err != nil {
		return 0, errors.ExternalErrorf(err, "git rev-list --parents %s", hash)
	}
	fields := strings.Fields(string(output))
	if len(fields) == 0 {
		return 0, nil
	}
	return len(fields) - 1, nil
}
