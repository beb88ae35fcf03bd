package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
	"github.com/octoharvest/octoharvest/internal/storage"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	s, err := storage.New(t.TempDir(), "octocat/hello-world")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &Pipeline{Store: s, ProjectID: "proj1"}
}

func TestResolveUser_KnownUser(t *testing.T) {
	p := newTestPipeline(t)

	key, err := p.resolveUser("u1", "octocat", "The Octocat", "octocat@github.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", key)

	nodes := p.Store.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, graph.KindUser, nodes[0].Kind)
	assert.Equal(t, "octocat", nodes[0].Properties["login"])
}

func TestResolveUser_FallsBackToSentinel(t *testing.T) {
	p := newTestPipeline(t)

	key, err := p.resolveUser("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, SentinelUserID, key)

	nodes := p.Store.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, SentinelUserID, nodes[0].Key)
}

func TestEnsureSentinelUser_IdempotentAcrossCalls(t *testing.T) {
	p := newTestPipeline(t)

	require.NoError(t, p.ensureSentinelUser())
	require.NoError(t, p.ensureSentinelUser())

	assert.Len(t, p.Store.Nodes(), 1, "repeated sentinel creation must dedup")
}

func TestAddEdge_SkipsWhenEitherEndpointMissing(t *testing.T) {
	p := newTestPipeline(t)

	require.NoError(t, p.addEdge(graph.RelOwns, graph.KindUser, "", graph.KindProject, "p1", nil))
	require.NoError(t, p.addEdge(graph.RelOwns, graph.KindUser, "u1", graph.KindProject, "", nil))

	assert.Empty(t, p.Store.Edges(), "missing endpoints must silently produce no edge")
}

func TestAddEdge_WritesWhenBothEndpointsPresent(t *testing.T) {
	p := newTestPipeline(t)

	require.NoError(t, p.addEdge(graph.RelOwns, graph.KindUser, "u1", graph.KindProject, "p1", map[string]interface{}{"since": "2024"}))

	edges := p.Store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "u1", edges[0].FromKey)
	assert.Equal(t, "p1", edges[0].ToKey)
}
