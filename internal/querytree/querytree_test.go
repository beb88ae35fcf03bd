package querytree

import (
	"testing"

	"github.com/shurcooL/graphql"
	"github.com/stretchr/testify/assert"
)

func TestPageSize(t *testing.T) {
	assert.Equal(t, 15, PageSize(RootPullRequests))
	assert.Equal(t, 100, PageSize(RootLabels))
	assert.Equal(t, 0, PageSize(RootKind("unknown")))
}

func TestNewRootStates_StartsWithHasNextPageTrue(t *testing.T) {
	states := NewRootStates([]RootKind{RootIssues, RootReleases}, nil)

	assert.Len(t, states, 2)
	for _, s := range states {
		assert.True(t, s.HasNextPage)
		assert.False(t, s.Done)
		assert.Empty(t, s.Cursor)
	}
}

func TestNewRootStates_ExceptionsStartDone(t *testing.T) {
	states := NewRootStates(
		[]RootKind{RootIssues, RootDiscussions},
		map[RootKind]bool{RootDiscussions: true},
	)

	byKind := map[RootKind]*RootState{}
	for _, s := range states {
		byKind[s.Kind] = s
	}
	assert.False(t, byKind[RootIssues].Done)
	assert.True(t, byKind[RootDiscussions].Done)
}

func TestAnyPending(t *testing.T) {
	t.Run("true when a non-done root still has a next page", func(t *testing.T) {
		states := []*RootState{
			{Kind: RootIssues, HasNextPage: true, Done: false},
			{Kind: RootReleases, HasNextPage: false, Done: true},
		}
		assert.True(t, AnyPending(states))
	})

	t.Run("false once every root is done", func(t *testing.T) {
		states := []*RootState{
			{Kind: RootIssues, HasNextPage: false, Done: true},
			{Kind: RootReleases, HasNextPage: false, Done: true},
		}
		assert.False(t, AnyPending(states))
	})

	t.Run("false for an empty state set", func(t *testing.T) {
		assert.False(t, AnyPending(nil))
	})

	t.Run("done root with HasNextPage true still counts as not pending", func(t *testing.T) {
		states := []*RootState{{Kind: RootLabels, HasNextPage: true, Done: true}}
		assert.False(t, AnyPending(states))
	})
}

func TestRootState_Advance(t *testing.T) {
	t.Run("more pages leaves Done false", func(t *testing.T) {
		s := &RootState{Kind: RootIssues, HasNextPage: true}
		s.Advance(PageInfo{EndCursor: graphql.String("cursor-1"), HasNextPage: graphql.Boolean(true)})

		assert.Equal(t, "cursor-1", s.Cursor)
		assert.True(t, s.HasNextPage)
		assert.False(t, s.Done)
	})

	t.Run("no more pages marks Done", func(t *testing.T) {
		s := &RootState{Kind: RootIssues, HasNextPage: true}
		s.Advance(PageInfo{EndCursor: graphql.String("cursor-final"), HasNextPage: graphql.Boolean(false)})

		assert.Equal(t, "cursor-final", s.Cursor)
		assert.False(t, s.HasNextPage)
		assert.True(t, s.Done)
	})
}
