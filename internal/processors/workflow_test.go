package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
)

func TestWorkflowProcessor_CreatesWorkflowAndRuns(t *testing.T) {
	p := newTestPipeline(t)
	proc := &WorkflowProcessor{Pipeline: p}

	doc := WorkflowDoc{
		ID: "w1", Title: "CI", State: "active",
		Runs: []WorkflowRunDoc{
			{
				ID: "run1", Status: "completed", Conclusion: "success", HeadCommitHash: "c1",
				Actor:           UserRef{ID: "u1", Login: "octocat"},
				TriggeringActor: UserRef{ID: "u2", Login: "dependabot"},
			},
		},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindWorkflow))
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindWorkflowRun))

	edges := p.Store.Edges()
	kindCount := map[graph.RelKind]int{}
	for _, e := range edges {
		kindCount[e.Kind]++
	}
	assert.Equal(t, 1, kindCount[graph.RelHasWorkflow])
	assert.Equal(t, 1, kindCount[graph.RelHasWorkflowRun])
	assert.Equal(t, 1, kindCount[graph.RelWorkflowRunOfCommit])
	assert.Equal(t, 1, kindCount[graph.RelCreatesWorkflowRun])
	assert.Equal(t, 1, kindCount[graph.RelTriggersWorkflowRun])
}

func TestWorkflowProcessor_RunWithoutHeadCommitSkipsEdge(t *testing.T) {
	p := newTestPipeline(t)
	proc := &WorkflowProcessor{Pipeline: p}

	doc := WorkflowDoc{ID: "w1", Runs: []WorkflowRunDoc{{ID: "run1"}}}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	for _, e := range p.Store.Edges() {
		assert.NotEqual(t, graph.RelWorkflowRunOfCommit, e.Kind)
	}
}
