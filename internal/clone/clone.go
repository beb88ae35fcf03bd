// Package clone wraps the system git binary to provide the commit, branch,
// and diff enumeration the collection phase needs once a repository has
// been fetched locally. It never talks to the GitHub API — that is the
// githubapi package's job; this package only shells out to git.
package clone

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/octoharvest/octoharvest/internal/errors"
)

// Repo is a handle to a full local clone of one repository, rooted at Dir.
type Repo struct {
	Dir string
}

// hashOwnerName derives the stable per-repository directory name used
// under a worker's clone root, so concurrent workers never collide.
func hashOwnerName(ownerRepo string) string {
	h := sha256.Sum256([]byte(strings.TrimSuffix(ownerRepo, ".git")))
	return fmt.Sprintf("%x", h)[:16]
}

// Clone performs a full (non-shallow) clone of url into a subdirectory of
// cloneRoot named by the sha256 of owner/name, so full commit history is
// available for the Clone Driver phase. If the directory already holds a
// valid clone it is reused as-is rather than re-cloned.
func Clone(ctx context.Context, cloneRoot, ownerRepo, url string) (*Repo, error) {
	dir := filepath.Join(cloneRoot, hashOwnerName(ownerRepo))

	if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
		return &Repo{Dir: dir}, nil
	}
	os.RemoveAll(dir)

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, errors.FileSystemErrorf(err, "creating clone root %s", filepath.Dir(dir))
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--no-single-branch", url, dir)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.ExternalErrorf(err, "git clone %s: %s", url, strings.TrimSpace(string(output)))
	}

	return &Repo{Dir: dir}, nil
}

// Remove deletes the clone directory, matching the worker's end-of-run
// cleanup step.
func (r *Repo) Remove() error {
	if err := os.RemoveAll(r.Dir); err != nil {
		return errors.FileSystemErrorf(err, "removing clone dir %s", r.Dir)
	}
	return nil
}

// ParseOwnerRepo extracts "owner/name" from any of the common GitHub URL
// shapes (HTTPS, SSH, or bare owner/name shorthand).
func ParseOwnerRepo(url string) (owner, name string, err error) {
	url = strings.TrimSpace(strings.TrimSuffix(url, ".git"))
	url = strings.TrimPrefix(url, "git@github.com:")
	url = strings.TrimPrefix(url, "https://github.com/")
	url = strings.TrimPrefix(url, "http://github.com/")
	url = strings.TrimPrefix(url, "git://github.com/")

	parts := strings.Split(url, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.ValidationErrorf("unrecognized repository reference: %s", url)
	}
	return parts[0], parts[1], nil
}
