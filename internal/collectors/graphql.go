// Package collectors presents a uniform facade over the GraphQL and REST
// sources: both produce the same model.* typed records, so processors
// never know which source a record came from.
package collectors

import (
	"context"
	"fmt"

	"github.com/octoharvest/octoharvest/internal/githubapi"
	"github.com/octoharvest/octoharvest/internal/model"
	"github.com/octoharvest/octoharvest/internal/querytree"
)

// QueryResult is one round's worth of fresh records, one slice per root
// kind that was still pending this round.
type QueryResult struct {
	PullRequests []model.PullRequest
	Issues       []model.Issue
	Discussions  []model.Discussion
	Releases     []model.Release
	Labels       []model.Label
	Watchers     []model.Watcher
	Stargazers   []model.Stargazer
}

// PartiallyCollected carries the numbers of pull requests and issues whose
// comment thread exceeded a single page, so the worker can schedule a
// REST follow-up pass for exactly those numbers.
type PartiallyCollected struct {
	PullRequestNumbers []int
	IssueNumbers       []int
}

// GraphQLCollector drives the repository query tree to completion,
// emitting one (QueryResult, PartiallyCollected) pair per round.
type GraphQLCollector struct {
	wrapper *githubapi.GraphQLWrapper
	owner   string
	name    string
}

// NewGraphQLCollector builds a collector bound to an already-acquired
// GraphQL wrapper for one repository.
func NewGraphQLCollector(wrapper *githubapi.GraphQLWrapper, owner, name string) *GraphQLCollector {
	return &GraphQLCollector{wrapper: wrapper, owner: owner, name: name}
}

// Get runs the multi-root query to exhaustion, streaming one round per
// channel send. The channel is closed once every requested root is Done
// or ctx is cancelled: a lazy sequence fed by a goroutine.
func (c *GraphQLCollector) Get(ctx context.Context, roots []querytree.RootKind, exceptions map[querytree.RootKind]bool) (<-chan roundResultPublic, func()) {
	out := make(chan roundResultPublic)
	states := querytree.NewRootStates(roots, exceptions)

	go func() {
		defer close(out)
		for querytree.AnyPending(states) {
			var query querytree.RepositoryQuery
			vars := querytree.Variables(c.owner, c.name, states)

			remaining := func() (int, string) {
				return int(query.RateLimit.Remaining), string(query.RateLimit.ResetAt)
			}
			if err := c.wrapper.Execute(ctx, &query, vars, remaining); err != nil {
				select {
				case out <- roundResultPublic{Err: fmt.Errorf("graphql round for %s/%s: %w", c.owner, c.name, err)}:
				case <-ctx.Done():
				}
				return
			}

			result, partial := adaptRound(query, states)
			for _, s := range states {
				s.Done = s.Done || doneAfterRound(s.Kind, query)
			}

			select {
			case out <- roundResultPublic{Result: result, Partial: partial}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() {}
}

// roundResultPublic is the channel element type: one round's result and
// partially-collected numbers, or the error that ended the rounds.
type roundResultPublic struct {
	Result  QueryResult
	Partial PartiallyCollected
	Err     error
}

func doneAfterRound(kind querytree.RootKind, q querytree.RepositoryQuery) bool {
	switch kind {
	case querytree.RootPullRequests:
		return !bool(q.Repository.PullRequests.PageInfo.HasNextPage)
	case querytree.RootIssues:
		return !bool(q.Repository.Issues.PageInfo.HasNextPage)
	case querytree.RootDiscussions:
		return !bool(q.Repository.Discussions.PageInfo.HasNextPage)
	case querytree.RootReleases:
		return !bool(q.Repository.Releases.PageInfo.HasNextPage)
	case querytree.RootLabels:
		return !bool(q.Repository.Labels.PageInfo.HasNextPage)
	case querytree.RootWatchers:
		return !bool(q.Repository.Watchers.PageInfo.HasNextPage)
	case querytree.RootStargazers:
		return !bool(q.Repository.Stargazers.PageInfo.HasNextPage)
	}
	return true
}

func adaptRound(q querytree.RepositoryQuery, states []*querytree.RootState) (QueryResult, PartiallyCollected) {
	pending := make(map[querytree.RootKind]bool, len(states))
	for _, s := range states {
		pending[s.Kind] = !s.Done
	}

	var result QueryResult
	var partial PartiallyCollected

	if pending[querytree.RootPullRequests] {
		for _, n := range q.Repository.PullRequests.Nodes {
			result.PullRequests = append(result.PullRequests, model.PullRequest{
				ID:                  string(n.ID),
				Number:              int(n.Number),
				Title:               string(n.Title),
				Body:                string(n.Body),
				State:               string(n.State),
				CommentsHasNextPage: bool(n.Comments.PageInfo.HasNextPage),
			})
			if n.Comments.PageInfo.HasNextPage {
				partial.PullRequestNumbers = append(partial.PullRequestNumbers, int(n.Number))
			}
		}
		for _, s := range states {
			if s.Kind == querytree.RootPullRequests {
				s.Advance(q.Repository.PullRequests.PageInfo)
			}
		}
	}
	if pending[querytree.RootIssues] {
		for _, n := range q.Repository.Issues.Nodes {
			result.Issues = append(result.Issues, model.Issue{
				ID:     string(n.ID),
				Number: int(n.Number),
				Title:  string(n.Title),
				Body:   string(n.Body),
				State:  string(n.State),
			})
			if n.Comments.PageInfo.HasNextPage {
				partial.IssueNumbers = append(partial.IssueNumbers, int(n.Number))
			}
		}
		for _, s := range states {
			if s.Kind == querytree.RootIssues {
				s.Advance(q.Repository.Issues.PageInfo)
			}
		}
	}
	if pending[querytree.RootDiscussions] {
		for _, n := range q.Repository.Discussions.Nodes {
			result.Discussions = append(result.Discussions, model.Discussion{
				ID:     string(n.ID),
				Number: int(n.Number),
				Title:  string(n.Title),
				Body:   string(n.Body),
				Closed: bool(n.Closed),
			})
		}
		for _, s := range states {
			if s.Kind == querytree.RootDiscussions {
				s.Advance(q.Repository.Discussions.PageInfo)
			}
		}
	}
	if pending[querytree.RootReleases] {
		for _, n := range q.Repository.Releases.Nodes {
			result.Releases = append(result.Releases, model.Release{
				ID:          string(n.ID),
				Name:        string(n.Name),
				PublishedAt: string(n.PublishedAt),
			})
		}
		for _, s := range states {
			if s.Kind == querytree.RootReleases {
				s.Advance(q.Repository.Releases.PageInfo)
			}
		}
	}
	if pending[querytree.RootLabels] {
		for _, n := range q.Repository.Labels.Nodes {
			result.Labels = append(result.Labels, model.Label{ID: string(n.ID), Name: string(n.Name)})
		}
		for _, s := range states {
			if s.Kind == querytree.RootLabels {
				s.Advance(q.Repository.Labels.PageInfo)
			}
		}
	}
	if pending[querytree.RootWatchers] {
		for _, n := range q.Repository.Watchers.Nodes {
			result.Watchers = append(result.Watchers, model.Watcher{ID: string(n.ID), Login: string(n.Login)})
		}
		for _, s := range states {
			if s.Kind == querytree.RootWatchers {
				s.Advance(q.Repository.Watchers.PageInfo)
			}
		}
	}
	if pending[querytree.RootStargazers] {
		for _, e := range q.Repository.Stargazers.Edges {
			result.Stargazers = append(result.Stargazers, model.Stargazer{
				ID:        string(e.Node.ID),
				Login:     string(e.Node.Login),
				StarredAt: string(e.StarredAt),
			})
		}
		for _, s := range states {
			if s.Kind == querytree.RootStargazers {
				s.Advance(q.Repository.Stargazers.PageInfo)
			}
		}
	}

	return result, partial
}
