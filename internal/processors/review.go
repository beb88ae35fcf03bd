package processors

import (
	"context"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// ReviewDoc normalizes a pull-request review regardless of source shape
// (GraphQL's nested connection vs. REST's flat list).
type ReviewDoc struct {
	ID          string
	State       string
	Body        string
	SubmittedAt string
	CommitHash  string
	Author      UserRef
	Comments    []ReviewCommentDoc
}

// ReviewCommentDoc is one inline comment on a review. RestID is the
// comment's REST-scoped numeric id; ReviewProcessor does not read it.
// ReplyToRestID is the REST id of the comment this one replies to.
type ReviewCommentDoc struct {
	ID                 string
	RestID             string
	Body               string
	DiffHunk           string
	Path               string
	Line               int
	OriginalLine       int
	CommitHash         string
	OriginalCommitHash string
	ReplyToRestID      string
	Author             UserRef
}

// ReviewProcessor creates a PullRequestReview node and its comments.
// ResolveReplyTo, when set, rewrites a REST reply's numeric parent id to
// the stable node id; when it is nil or finds no match, replyToId is empty
// and no REPLY_TO edge is written. The repository worker builds its
// ReviewProcessor without ResolveReplyTo and passes reviews without
// comments.
type ReviewProcessor struct {
	Pipeline      *Pipeline
	ResolveReplyTo func(restID string) (nodeID string, ok bool)
}

func (p *ReviewProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(ReviewDoc)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindPullRequestReview, Key: d.ID,
		Properties: map[string]interface{}{
			"id": d.ID, "state": d.State, "body": d.Body,
			"submittedAt": d.SubmittedAt, "commitHash": d.CommitHash,
		},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasReview, parent.Kind, parent.Key, graph.KindPullRequestReview, d.ID, nil); err != nil {
		return err
	}
	if d.CommitHash != "" {
		if err := p.Pipeline.addEdge(graph.RelReviewOfCommit, graph.KindPullRequestReview, d.ID, graph.KindCommit, d.CommitHash, nil); err != nil {
			return err
		}
	}
	authorKey, err := p.Pipeline.resolveUser(d.Author.ID, d.Author.Login, d.Author.Name, d.Author.Email)
	if err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelCreates, graph.KindUser, authorKey, graph.KindPullRequestReview, d.ID, nil); err != nil {
		return err
	}

	for _, c := range d.Comments {
		if err := p.processComment(d.ID, c); err != nil {
			return err
		}
	}
	return nil
}

func (p *ReviewProcessor) processComment(reviewID string, c ReviewCommentDoc) error {
	replyToID := ""
	if c.ReplyToRestID != "" && p.ResolveReplyTo != nil {
		if id, ok := p.ResolveReplyTo(c.ReplyToRestID); ok {
			replyToID = id
		}
	}

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindPullRequestReviewComment, Key: c.ID,
		Properties: map[string]interface{}{
			"id": c.ID, "body": c.Body, "diffHunk": c.DiffHunk, "path": c.Path,
			"line": c.Line, "originalLine": c.OriginalLine, "commitHash": c.CommitHash,
			"originalCommitHash": c.OriginalCommitHash, "replyToId": replyToID,
		},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasReviewComment, graph.KindPullRequestReview, reviewID, graph.KindPullRequestReviewComment, c.ID, nil); err != nil {
		return err
	}
	if c.CommitHash != "" {
		if err := p.Pipeline.addEdge(graph.RelReviewCommentOfCommit, graph.KindPullRequestReviewComment, c.ID, graph.KindCommit, c.CommitHash, nil); err != nil {
			return err
		}
	}
	if c.OriginalCommitHash != "" {
		if err := p.Pipeline.addEdge(graph.RelReviewCommentOfOrigCommit, graph.KindPullRequestReviewComment, c.ID, graph.KindCommit, c.OriginalCommitHash, nil); err != nil {
			return err
		}
	}
	if replyToID != "" {
		if err := p.Pipeline.addEdge(graph.RelReplyTo, graph.KindPullRequestReviewComment, c.ID, graph.KindPullRequestReviewComment, replyToID, nil); err != nil {
			return err
		}
	}
	authorKey, err := p.Pipeline.resolveUser(c.Author.ID, c.Author.Login, c.Author.Name, c.Author.Email)
	if err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelCreates, graph.KindUser, authorKey, graph.KindPullRequestReviewComment, c.ID, nil)
}
