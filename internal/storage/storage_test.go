package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, "octocat/hello-world")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_NamespacesByOwnerRepo(t *testing.T) {
	base := t.TempDir()

	s1, err := New(base, "octocat/hello-world")
	require.NoError(t, err)
	defer s1.Close()

	s2, err := New(base, "octocat/other-repo")
	require.NoError(t, err)
	defer s2.Close()

	assert.NotEqual(t, s1.Dir(), s2.Dir())
	assert.DirExists(t, s1.Dir())
	assert.DirExists(t, s2.Dir())
}

func TestNew_ClearsStaleDirectory(t *testing.T) {
	base := t.TempDir()

	s1, err := New(base, "octocat/hello-world")
	require.NoError(t, err)
	stalePath := filepath.Join(s1.Dir(), "stale.txt")
	require.NoError(t, os.WriteFile(stalePath, []byte("leftover"), 0o644))
	require.NoError(t, s1.Close())

	s2, err := New(base, "octocat/hello-world")
	require.NoError(t, err)
	defer s2.Close()

	assert.NoFileExists(t, stalePath)
}

func TestAddNode_DeduplicatesByKindAndKey(t *testing.T) {
	s := newTestStore(t)

	n := graph.Node{Kind: graph.KindUser, Key: "u1", Properties: map[string]interface{}{"login": "octocat"}}
	require.NoError(t, s.AddNode(n))
	require.NoError(t, s.AddNode(n))

	assert.Len(t, s.Nodes(), 1, "duplicate AddNode calls for the same kind+key must not double-add")
}

func TestAddNode_DistinctKeysAreKept(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddNode(graph.Node{Kind: graph.KindUser, Key: "u1", Properties: map[string]interface{}{"login": "a"}}))
	require.NoError(t, s.AddNode(graph.Node{Kind: graph.KindUser, Key: "u2", Properties: map[string]interface{}{"login": "b"}}))

	assert.Len(t, s.Nodes(), 2)
}

func TestAddEdge_DeduplicatesByKindAndEndpoints(t *testing.T) {
	s := newTestStore(t)

	e := graph.Edge{
		Kind:     graph.RelOwns,
		FromKind: graph.KindUser,
		FromKey:  "u1",
		ToKind:   graph.KindProject,
		ToKey:    "p1",
	}
	require.NoError(t, s.AddEdge(e))
	require.NoError(t, s.AddEdge(e))

	assert.Len(t, s.Edges(), 1)
}

func TestAddEdge_DifferentEndpointsAreDistinctEdges(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddEdge(graph.Edge{Kind: graph.RelOwns, FromKind: graph.KindUser, FromKey: "u1", ToKind: graph.KindProject, ToKey: "p1"}))
	require.NoError(t, s.AddEdge(graph.Edge{Kind: graph.RelOwns, FromKind: graph.KindUser, FromKey: "u2", ToKind: graph.KindProject, ToKey: "p1"}))

	assert.Len(t, s.Edges(), 2)
}

func TestAddNode_WritesCSVWithHeaderOnce(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddNode(graph.Node{Kind: graph.KindUser, Key: "u1", Properties: map[string]interface{}{"login": "octocat"}}))
	require.NoError(t, s.AddNode(graph.Node{Kind: graph.KindUser, Key: "u2", Properties: map[string]interface{}{"login": "monalisa"}}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(filepath.Join(s.Dir(), "node_User.csv"))
	require.NoError(t, err)

	lines := splitLines(string(data))
	require.Len(t, lines, 3, "header + two data rows")
	assert.Contains(t, lines[0], "id")
	assert.Contains(t, lines[0], "login")
}

func TestNodes_ReturnsACopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddNode(graph.Node{Kind: graph.KindUser, Key: "u1", Properties: map[string]interface{}{"login": "a"}}))

	got := s.Nodes()
	got[0].Key = "mutated"

	assert.Equal(t, "u1", s.Nodes()[0].Key, "mutating the returned slice must not affect the store")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
