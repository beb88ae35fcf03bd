package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepoList(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRepositoryList_SkipsBlanksAndComments(t *testing.T) {
	path := writeRepoList(t, `
# a comment line

octoharvest/octoharvest
https://github.com/octocat/hello-world.git
`)

	repos, err := loadRepositoryList(path)
	require.NoError(t, err)
	require.Len(t, repos, 2)

	assert.Equal(t, "octoharvest", repos[0].Owner)
	assert.Equal(t, "octoharvest", repos[0].Name)
	assert.Equal(t, "octocat", repos[1].Owner)
	assert.Equal(t, "hello-world", repos[1].Name)
}

func TestLoadRepositoryList_SkipsUnparseableLines(t *testing.T) {
	path := writeRepoList(t, "not-a-valid-reference\noctoharvest/octoharvest\n")

	repos, err := loadRepositoryList(path)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octoharvest", repos[0].Owner)
}

func TestLoadRepositoryList_MissingFileReturnsError(t *testing.T) {
	_, err := loadRepositoryList(filepath.Join(t.TempDir(), "nonexistent.txt"))
	assert.Error(t, err)
}

func TestLoadRepositoryList_EmptyFileReturnsNoRepos(t *testing.T) {
	path := writeRepoList(t, "")
	repos, err := loadRepositoryList(path)
	require.NoError(t, err)
	assert.Empty(t, repos)
}
