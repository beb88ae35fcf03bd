// Package querytree composes the GraphQL query tree for a repository's
// secondary collections: issues, pull requests, discussions, releases,
// labels, watchers, stargazers. One interface with an implementing struct
// per root kind stands in for what would otherwise be a subclass per
// collection.
package querytree

import "github.com/shurcooL/graphql"

// RootKind names one of the seven top-level secondary collections a
// repository query can request.
type RootKind string

const (
	RootPullRequests RootKind = "pullRequests"
	RootIssues       RootKind = "issues"
	RootDiscussions  RootKind = "discussions"
	RootReleases     RootKind = "releases"
	RootLabels       RootKind = "labels"
	RootWatchers     RootKind = "watchers"
	RootStargazers   RootKind = "stargazers"
)

// pageSizes are pinned per-collection defaults; changing them changes only
// throughput, never semantics.
var pageSizes = map[RootKind]int{
	RootLabels:       100,
	RootReleases:     100,
	RootWatchers:     50,
	RootStargazers:   50,
	RootDiscussions:  30,
	RootIssues:       30,
	RootPullRequests: 15,
}

// PageSize returns the pinned page size for a root kind.
func PageSize(kind RootKind) int {
	return pageSizes[kind]
}

// RootState tracks one secondary root's pagination cursor across rounds.
type RootState struct {
	Kind        RootKind
	Cursor      string
	HasNextPage bool
	Done        bool // true once this root is exhausted or in the exceptions set
}

// NewRootStates builds the initial per-root state for the requested roots,
// all starting with an empty cursor and HasNextPage=true so the first
// round always fetches a page from each.
func NewRootStates(roots []RootKind, exceptions map[RootKind]bool) []*RootState {
	states := make([]*RootState, 0, len(roots))
	for _, kind := range roots {
		states = append(states, &RootState{
			Kind:        kind,
			HasNextPage: true,
			Done:        exceptions[kind],
		})
	}
	return states
}

// AnyPending reports whether at least one non-done root still has a page
// to fetch; the multi-query loop terminates when this returns false.
func AnyPending(states []*RootState) bool {
	for _, s := range states {
		if !s.Done && s.HasNextPage {
			return true
		}
	}
	return false
}

// PageInfo mirrors GraphQL's standard pageInfo connection fragment.
type PageInfo struct {
	EndCursor   graphql.String
	HasNextPage graphql.Boolean
}

// Advance updates a root's cursor/hasNextPage from a returned pageInfo,
// marking it Done once the server reports no further pages.
func (s *RootState) Advance(info PageInfo) {
	s.Cursor = string(info.EndCursor)
	s.HasNextPage = bool(info.HasNextPage)
	if !s.HasNextPage {
		s.Done = true
	}
}
