package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
	"github.com/octoharvest/octoharvest/internal/model"
)

func TestSimpleLinkProcessor_Dependency(t *testing.T) {
	p := newTestPipeline(t)
	proc := &SimpleLinkProcessor{Pipeline: p}

	require.NoError(t, proc.Dependency(DependencyDoc{Name: "golang.org/x/sync", Version: "v0.5.0"}))

	nodes := p.Store.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "golang.org/x/sync@v0.5.0", nodes[0].Key)

	edges := p.Store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, graph.RelHasDependency, edges[0].Kind)
}

func TestSimpleLinkProcessor_Stargazer(t *testing.T) {
	p := newTestPipeline(t)
	proc := &SimpleLinkProcessor{Pipeline: p}

	require.NoError(t, proc.Stargazer(model.Stargazer{ID: "u1", Login: "octocat", StarredAt: "2024-01-01T00:00:00Z"}))

	edges := p.Store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, graph.RelStars, edges[0].Kind)
	assert.Equal(t, "u1", edges[0].FromKey)
}

func TestSimpleLinkProcessor_WatcherWithoutID(t *testing.T) {
	p := newTestPipeline(t)
	proc := &SimpleLinkProcessor{Pipeline: p}

	require.NoError(t, proc.Watcher(model.Watcher{}))

	edges := p.Store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, SentinelUserID, edges[0].FromKey, "an unresolvable watcher must link via the sentinel user")
}

func TestSimpleLinkProcessor_ReleaseAndLabel(t *testing.T) {
	p := newTestPipeline(t)
	proc := &SimpleLinkProcessor{Pipeline: p}

	require.NoError(t, proc.Release(model.Release{ID: "r1", Name: "v1.0.0"}))
	require.NoError(t, proc.Label(model.Label{ID: "l1", Name: "bug"}))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindRelease))
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindLabel))
}
