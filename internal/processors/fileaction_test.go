package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/clone"
	"github.com/octoharvest/octoharvest/internal/graph"
)

func countNodeKind(nodes []graph.Node, kind graph.NodeKind) int {
	n := 0
	for _, node := range nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

func TestFileActionProcessor_AddedFileHasNoBeforeNode(t *testing.T) {
	p := newTestPipeline(t)
	proc := &FileActionProcessor{Pipeline: p}

	doc := FileActionDoc{
		CommitHash: "c1",
		Change:     clone.FileChange{Path: "new.go", ChangeType: "ADDED"},
		AfterSHA:   "sha-after",
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindFile), "an added file must only create an after-state File node")

	var action graph.Node
	for _, n := range nodes {
		if n.Kind == graph.KindFileAction {
			action = n
		}
	}
	assert.Equal(t, true, action.Properties["new"])
	assert.Equal(t, false, action.Properties["deleted"])

	for _, e := range p.Store.Edges() {
		assert.NotEqual(t, graph.RelFileBeforeAction, e.Kind, "an added file must not emit a before-action edge")
	}
}

func TestFileActionProcessor_DeletedFileHasNoAfterNode(t *testing.T) {
	p := newTestPipeline(t)
	proc := &FileActionProcessor{Pipeline: p}

	doc := FileActionDoc{
		CommitHash: "c1",
		Change:     clone.FileChange{Path: "gone.go", ChangeType: "DELETED"},
		BeforeSHA:  "sha-before",
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindFile))

	for _, e := range p.Store.Edges() {
		assert.NotEqual(t, graph.RelFileAfterAction, e.Kind, "a deleted file must not emit an after-action edge")
	}
}

func TestFileActionProcessor_ModifiedFileHasBeforeAndAfter(t *testing.T) {
	p := newTestPipeline(t)
	proc := &FileActionProcessor{Pipeline: p}

	doc := FileActionDoc{
		CommitHash: "c1",
		Change:     clone.FileChange{Path: "existing.go", ChangeType: "MODIFIED"},
		BeforeSHA:  "sha-before",
		AfterSHA:   "sha-after",
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	assert.Equal(t, 2, countNodeKind(p.Store.Nodes(), graph.KindFile))

	edges := p.Store.Edges()
	var sawBefore, sawAfter bool
	for _, e := range edges {
		if e.Kind == graph.RelFileBeforeAction {
			sawBefore = true
		}
		if e.Kind == graph.RelFileAfterAction {
			sawAfter = true
		}
	}
	assert.True(t, sawBefore)
	assert.True(t, sawAfter)
}

func TestFileActionProcessor_RenamedAndCopiedFlags(t *testing.T) {
	p := newTestPipeline(t)

	renameDoc := FileActionDoc{
		CommitHash: "c1",
		Change:     clone.FileChange{Path: "new.go", OldPath: "old.go", ChangeType: "RENAMED"},
		BeforeSHA:  "sha1", AfterSHA: "sha1",
	}
	require.NoError(t, (&FileActionProcessor{Pipeline: p}).Process(context.Background(), nil, renameDoc))

	var renameAction graph.Node
	for _, n := range p.Store.Nodes() {
		if n.Kind == graph.KindFileAction {
			renameAction = n
		}
	}
	assert.Equal(t, true, renameAction.Properties["renamed"])
	assert.Equal(t, false, renameAction.Properties["copied"])
}

func TestFileKey_PrefersSHAOverPathHash(t *testing.T) {
	withSHA := fileKey("a.go", "deadbeef")
	assert.Equal(t, "deadbeef", withSHA)

	withoutSHA1 := fileKey("a.go", "")
	withoutSHA2 := fileKey("a.go", "")
	withoutSHA3 := fileKey("b.go", "")
	assert.Equal(t, withoutSHA1, withoutSHA2, "the path-hash fallback must be stable for the same path")
	assert.NotEqual(t, withoutSHA1, withoutSHA3)
}
