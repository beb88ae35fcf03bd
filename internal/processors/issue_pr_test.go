package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
)

func TestIssueProcessor_FullDocument(t *testing.T) {
	p := newTestPipeline(t)
	proc := &IssueProcessor{Pipeline: p}

	doc := IssueDoc{
		ID: "i1", Number: 42, Title: "bug report", State: "OPEN", CreatedAt: "2024-05-10T00:00:00Z",
		MilestoneID: "m1", MilestoneTitle: "v2.0",
		AuthorID: "u1", AuthorLogin: "reporter",
		Assignees: []UserRef{{ID: "u2", Login: "fixer"}},
		Labels:    []string{"bug", "p1"},
		Comments:  []CommentDoc{{ID: "c1", Body: "confirmed", Author: UserRef{ID: "u3", Login: "triager"}}},
		ClosedEvent: &ClosedEventDoc{ActorID: "u2", ActorLogin: "fixer", ClosedAt: "2024-05-20T00:00:00Z"},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindIssue))
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindProjectIssueMonth))
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindMilestone))
	assert.Equal(t, 2, countNodeKind(nodes, graph.KindLabel))

	edges := p.Store.Edges()
	kindCount := map[graph.RelKind]int{}
	for _, e := range edges {
		kindCount[e.Kind]++
	}
	assert.Equal(t, 1, kindCount[graph.RelHasIssueMonth])
	assert.Equal(t, 1, kindCount[graph.RelIssueInMonth])
	assert.Equal(t, 1, kindCount[graph.RelHasMilestone])
	assert.Equal(t, 1, kindCount[graph.RelCreates])
	assert.Equal(t, 1, kindCount[graph.RelAssignedTo])
	assert.Equal(t, 2, kindCount[graph.RelHasLabel])
	assert.Equal(t, 1, kindCount[graph.RelCommentsOn])
	assert.Equal(t, 1, kindCount[graph.RelHasEvent])
}

func TestIssueProcessor_SkipsLabelsAndMilestoneWhenAbsent(t *testing.T) {
	p := newTestPipeline(t)
	proc := &IssueProcessor{Pipeline: p}

	doc := IssueDoc{ID: "i1", AuthorID: "u1", AuthorLogin: "reporter"}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 0, countNodeKind(nodes, graph.KindMilestone))
	assert.Equal(t, 0, countNodeKind(nodes, graph.KindLabel))
}

func TestPullRequestProcessor_FullDocument(t *testing.T) {
	p := newTestPipeline(t)
	proc := &PullRequestProcessor{Pipeline: p, Reviews: &ReviewProcessor{Pipeline: p}}

	doc := PullRequestDoc{
		IssueDoc: IssueDoc{
			ID: "pr1", Number: 7, Title: "add feature", State: "OPEN", CreatedAt: "2024-06-01T00:00:00Z",
			AuthorID: "u1", AuthorLogin: "contributor",
		},
		BaseSHA: "base-sha", HeadSHA: "head-sha",
		MergedEvent:        &MergedEventDoc{CommitHash: "merge-sha", MergedAt: "2024-06-02T00:00:00Z"},
		RequestedReviewers: []UserRef{{ID: "u4", Login: "reviewer"}},
		Files: []PullRequestFileDoc{
			{Path: "main.go", ChangeType: "MODIFIED", Additions: 5, Deletions: 1},
		},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindPullRequest))
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindProjectPullRequestMonth))
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindPullRequestFile))

	edges := p.Store.Edges()
	kindCount := map[graph.RelKind]int{}
	for _, e := range edges {
		kindCount[e.Kind]++
	}
	assert.Equal(t, 1, kindCount[graph.RelBaseCommit])
	assert.Equal(t, 1, kindCount[graph.RelHeadCommit])
	assert.Equal(t, 1, kindCount[graph.RelLinksCommit])
	assert.Equal(t, 1, kindCount[graph.RelHasFile])
	assert.GreaterOrEqual(t, kindCount[graph.RelAssignedTo], 1, "a requested reviewer must produce an ASSIGNED_TO edge")
}

func TestPullRequestProcessor_NoMergedEventSkipsLinksCommit(t *testing.T) {
	p := newTestPipeline(t)
	proc := &PullRequestProcessor{Pipeline: p}

	doc := PullRequestDoc{IssueDoc: IssueDoc{ID: "pr1", AuthorID: "u1", AuthorLogin: "contributor"}}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	for _, e := range p.Store.Edges() {
		assert.NotEqual(t, graph.RelLinksCommit, e.Kind)
	}
}

func TestPullRequestProcessor_NilReviewsProcessorSkipsReviewsWithoutError(t *testing.T) {
	p := newTestPipeline(t)
	proc := &PullRequestProcessor{Pipeline: p, Reviews: nil}

	doc := PullRequestDoc{
		IssueDoc: IssueDoc{ID: "pr1", AuthorID: "u1", AuthorLogin: "contributor"},
		Reviews:  []ReviewDoc{{ID: "rv1", State: "APPROVED"}},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))
}
