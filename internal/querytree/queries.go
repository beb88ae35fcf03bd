package querytree

import "github.com/shurcooL/graphql"

// RepositoryQuery is the outer selection every round sends: the fixed
// rateLimit trailer plus whichever secondary-root fragments are still
// pending for this round. shurcooL/graphql requires static struct shapes,
// so the wrapper always requests every root's fragment; roots already
// Done are simply ignored by the caller after the round completes
// (GraphQL has no per-round "omit this field" short of building a new
// query type, which the exceptions/Done bookkeeping makes unnecessary —
// the extra bytes for a finished root's single empty page are negligible).
type RepositoryQuery struct {
	Repository struct {
		PullRequests pullRequestConnection `graphql:"pullRequests(first: $prFirst, after: $prAfter)"`
		Issues       issueConnection       `graphql:"issues(first: $issueFirst, after: $issueAfter)"`
		Discussions  discussionConnection  `graphql:"discussions(first: $discussionFirst, after: $discussionAfter)"`
		Releases     releaseConnection     `graphql:"releases(first: $releaseFirst, after: $releaseAfter)"`
		Labels       labelConnection       `graphql:"labels(first: $labelFirst, after: $labelAfter)"`
		Watchers     watcherConnection     `graphql:"watchers(first: $watcherFirst, after: $watcherAfter)"`
		Stargazers   stargazerConnection   `graphql:"stargazers(first: $stargazerFirst, after: $stargazerAfter)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
	RateLimit RateLimitInfo `graphql:"rateLimit"`
}

// RateLimitInfo is the rateLimit trailer every query embeds so the
// GraphQL wrapper can inspect remaining budget after each round.
type RateLimitInfo struct {
	Remaining graphql.Int
	Cost      graphql.Int
	ResetAt   graphql.String
}

type pullRequestConnection struct {
	PageInfo PageInfo
	Nodes    []struct {
		ID       graphql.String
		Number   graphql.Int
		Title    graphql.String
		Body     graphql.String
		State    graphql.String
		Comments struct {
			PageInfo PageInfo
		} `graphql:"comments(first: 100)"`
	}
}

type issueConnection struct {
	PageInfo PageInfo
	Nodes    []struct {
		ID       graphql.String
		Number   graphql.Int
		Title    graphql.String
		Body     graphql.String
		State    graphql.String
		Comments struct {
			PageInfo PageInfo
		} `graphql:"comments(first: 100)"`
	}
}

type discussionConnection struct {
	PageInfo PageInfo
	Nodes    []struct {
		ID     graphql.String
		Number graphql.Int
		Title  graphql.String
		Body   graphql.String
		Closed graphql.Boolean
	}
}

type releaseConnection struct {
	PageInfo PageInfo
	Nodes    []struct {
		ID          graphql.String
		Name        graphql.String
		PublishedAt graphql.String
	}
}

type labelConnection struct {
	PageInfo PageInfo
	Nodes    []struct {
		ID   graphql.String
		Name graphql.String
	}
}

type watcherConnection struct {
	PageInfo PageInfo
	Nodes    []struct {
		ID    graphql.String
		Login graphql.String
	}
}

type stargazerConnection struct {
	PageInfo PageInfo
	Edges    []struct {
		StarredAt graphql.String
		Node      struct {
			ID    graphql.String
			Login graphql.String
		}
	}
}

// Variables builds the initial $owner/$name plus per-root $xFirst/$xAfter
// variable map for a round, given the current RootState slice.
func Variables(owner, name string, states []*RootState) map[string]interface{} {
	vars := map[string]interface{}{
		"owner": graphql.String(owner),
		"name":  graphql.String(name),
	}
	for _, s := range states {
		firstKey := string(s.Kind) + "First"
		afterKey := string(s.Kind) + "After"
		if s.Done {
			vars[firstKey] = graphql.Int(1)
			vars[afterKey] = (*graphql.String)(nil)
			continue
		}
		vars[firstKey] = graphql.Int(PageSize(s.Kind))
		if s.Cursor == "" {
			vars[afterKey] = (*graphql.String)(nil)
		} else {
			cursor := graphql.String(s.Cursor)
			vars[afterKey] = &cursor
		}
	}
	return vars
}
