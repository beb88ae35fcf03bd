package collectors

import (
	"context"
	"fmt"

	"github.com/shurcooL/graphql"

	"github.com/octoharvest/octoharvest/internal/githubapi"
	"github.com/octoharvest/octoharvest/internal/model"
)

const discussionCommentPageSize = 50

type discussionCommentsQuery struct {
	Repository struct {
		Discussion struct {
			Comments struct {
				PageInfo querytreePageInfo
				Nodes    []struct {
					ID   graphql.String
					Body graphql.String
					Author struct {
						Login graphql.String
					}
				}
			} `graphql:"comments(first: $first, after: $after)"`
		} `graphql:"discussion(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
	RateLimit rateLimitInfoAlias `graphql:"rateLimit"`
}

// querytreePageInfo and rateLimitInfoAlias avoid importing querytree just
// for its PageInfo/RateLimitInfo shapes in this one-off query.
type querytreePageInfo struct {
	EndCursor   graphql.String
	HasNextPage graphql.Boolean
}

type rateLimitInfoAlias struct {
	Remaining graphql.Int
	Cost      graphql.Int
	ResetAt   graphql.String
}

// GetDiscussionComments streams a discussion's comments, one page per
// channel send: a lazy sequence of partial discussion-comment pages.
func GetDiscussionComments(ctx context.Context, wrapper *githubapi.GraphQLWrapper, owner, name string, number int) (<-chan DiscussionCommentPage, func()) {
	out := make(chan DiscussionCommentPage)

	go func() {
		defer close(out)
		cursor := (*graphql.String)(nil)
		for {
			var query discussionCommentsQuery
			vars := map[string]interface{}{
				"owner":  graphql.String(owner),
				"name":   graphql.String(name),
				"number": graphql.Int(number),
				"first":  graphql.Int(discussionCommentPageSize),
				"after":  cursor,
			}
			remaining := func() (int, string) {
				return int(query.RateLimit.Remaining), string(query.RateLimit.ResetAt)
			}
			if err := wrapper.Execute(ctx, &query, vars, remaining); err != nil {
				select {
				case out <- DiscussionCommentPage{Err: fmt.Errorf("discussion %d comments: %w", number, err)}:
				case <-ctx.Done():
				}
				return
			}

			var page DiscussionCommentPage
			for _, n := range query.Repository.Discussion.Comments.Nodes {
				page.Comments = append(page.Comments, model.DiscussionComment{
					ID:     string(n.ID),
					Body:   string(n.Body),
					Author: string(n.Author.Login),
				})
			}
			select {
			case out <- page:
			case <-ctx.Done():
				return
			}

			info := query.Repository.Discussion.Comments.PageInfo
			if !bool(info.HasNextPage) {
				return
			}
			ec := info.EndCursor
			cursor = &ec
		}
	}()

	return out, func() {}
}

// DiscussionCommentPage is one page of a discussion's comment thread.
type DiscussionCommentPage struct {
	Comments []model.DiscussionComment
	Err      error
}
