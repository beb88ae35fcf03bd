package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
)

func TestBranchProcessor_CreatesBranchAndLinksCommits(t *testing.T) {
	p := newTestPipeline(t)
	proc := &BranchProcessor{Pipeline: p}

	doc := BranchDoc{
		Name:             "main",
		HeadCommitHash:   "head1",
		ReachableCommits: []string{"head1", "older1", "older2"},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, graph.KindBranch, nodes[0].Kind)
	assert.Equal(t, "main", nodes[0].Properties["name"])

	edges := p.Store.Edges()
	kindCount := map[graph.RelKind]int{}
	for _, e := range edges {
		kindCount[e.Kind]++
	}
	assert.Equal(t, 1, kindCount[graph.RelHasBranch])
	assert.Equal(t, 1, kindCount[graph.RelHasHeadCommit])
	assert.Equal(t, 3, kindCount[graph.RelContainsCommit])
}

func TestBranchProcessor_SameNameProducesSameBranchID(t *testing.T) {
	p := newTestPipeline(t)
	proc := &BranchProcessor{Pipeline: p}

	require.NoError(t, proc.Process(context.Background(), nil, BranchDoc{Name: "main", HeadCommitHash: "h1"}))
	require.NoError(t, proc.Process(context.Background(), nil, BranchDoc{Name: "main", HeadCommitHash: "h2"}))

	assert.Len(t, p.Store.Nodes(), 1, "reprocessing the same branch name must dedup to one Branch node")
}

func TestBranchProcessor_NoHeadCommitSkipsEdge(t *testing.T) {
	p := newTestPipeline(t)
	proc := &BranchProcessor{Pipeline: p}

	require.NoError(t, proc.Process(context.Background(), nil, BranchDoc{Name: "orphan"}))

	for _, e := range p.Store.Edges() {
		assert.NotEqual(t, graph.RelHasHeadCommit, e.Kind)
	}
}
