package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/clone"
	"github.com/octoharvest/octoharvest/internal/graph"
)

func TestYearMonth(t *testing.T) {
	tests := []struct {
		name      string
		ts        string
		wantYear  int
		wantMonth int
	}{
		{"full timestamp", "2024-03-15T10:00:00Z", 2024, 3},
		{"december", "2023-12-01T00:00:00Z", 2023, 12},
		{"too short", "2024", 0, 0},
		{"garbage", "not-a-date", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, m := yearMonth(tt.ts)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}

func TestCommitContentProcessor_WritesCommitAndMonthBucket(t *testing.T) {
	p := newTestPipeline(t)
	proc := &CommitContentProcessor{Pipeline: p}

	doc := CommitContentDoc{
		Commit: clone.CommitRecord{
			Hash:         "abc123",
			ParentHashes: []string{"parent1"},
			Message:      "fix: something",
		},
		CommittedAt: "2024-03-15T10:00:00Z",
	}

	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	var sawCommit, sawMonth bool
	for _, n := range nodes {
		if n.Kind == graph.KindCommit && n.Key == "abc123" {
			sawCommit = true
			assert.Equal(t, "fix: something", n.Properties["message"])
		}
		if n.Kind == graph.KindProjectCommitMonth {
			sawMonth = true
			assert.Equal(t, 2024, n.Properties["year"])
			assert.Equal(t, 3, n.Properties["month"])
		}
	}
	assert.True(t, sawCommit, "expected a Commit node")
	assert.True(t, sawMonth, "expected a ProjectCommitMonth node")

	edges := p.Store.Edges()
	var sawParentOf bool
	for _, e := range edges {
		if e.Kind == graph.RelParentOf && e.FromKey == "parent1" && e.ToKey == "abc123" {
			sawParentOf = true
		}
	}
	assert.True(t, sawParentOf, "expected a PARENT_OF edge from parent1 to abc123")
}

func TestCommitContentProcessor_SkipsEmptyParentHash(t *testing.T) {
	p := newTestPipeline(t)
	proc := &CommitContentProcessor{Pipeline: p}

	doc := CommitContentDoc{
		Commit:      clone.CommitRecord{Hash: "root1", ParentHashes: []string{""}, Message: "initial"},
		CommittedAt: "2024-01-01T00:00:00Z",
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	for _, e := range p.Store.Edges() {
		assert.NotEqual(t, graph.RelParentOf, e.Kind, "a root commit must not emit a PARENT_OF edge")
	}
}

func TestCommitMetaProcessor_ResolvesAuthorCommitterAndComments(t *testing.T) {
	p := newTestPipeline(t)
	proc := &CommitMetaProcessor{Pipeline: p}

	doc := CommitMetaDoc{
		Hash:           "abc123",
		AuthorID:       "u1",
		AuthorLogin:    "alice",
		CommitterID:    "u2",
		CommitterLogin: "bob",
		Comments: []CommitCommentDoc{
			{ID: "c1", Body: "nice catch", CommenterID: "u3", Login: "carol"},
		},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	edges := p.Store.Edges()
	kinds := map[graph.RelKind]int{}
	for _, e := range edges {
		kinds[e.Kind]++
	}
	assert.Equal(t, 1, kinds[graph.RelAuthorOf])
	assert.Equal(t, 1, kinds[graph.RelCommitterOf])
	assert.Equal(t, 1, kinds[graph.RelCommentsOnCommit])
}

func TestCommitMetaProcessor_FallsBackToSentinelForUnresolvedAuthor(t *testing.T) {
	p := newTestPipeline(t)
	proc := &CommitMetaProcessor{Pipeline: p}

	doc := CommitMetaDoc{Hash: "abc123"}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	var sawSentinelEdge bool
	for _, e := range p.Store.Edges() {
		if e.Kind == graph.RelAuthorOf && e.FromKey == SentinelUserID {
			sawSentinelEdge = true
		}
	}
	assert.True(t, sawSentinelEdge, "an unresolvable author must fall back to the sentinel user")
}
