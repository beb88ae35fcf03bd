package processors

import (
	"context"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// DiscussionDoc is a repository discussion thread.
type DiscussionDoc struct {
	ID        string
	Number    int
	Title     string
	Body      string
	Closed    bool
	ClosedAt  string
	Upvotes   int
	Category  string
	Author    UserRef
	Comments  []DiscussionCommentDoc
}

// DiscussionCommentDoc is one comment (or reply) in a discussion thread.
type DiscussionCommentDoc struct {
	ID       string
	Body     string
	IsAnswer bool
	Author   UserRef
	Replies  []DiscussionCommentDoc
}

// DiscussionProcessor creates the Discussion node, links it to the
// project, and recurses into comments and replies.
type DiscussionProcessor struct {
	Pipeline *Pipeline
}

func (p *DiscussionProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(DiscussionDoc)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindDiscussion, Key: d.ID,
		Properties: map[string]interface{}{
			"id": d.ID, "number": d.Number, "title": d.Title, "closed": d.Closed,
			"closedAt": d.ClosedAt, "upvoteCount": d.Upvotes, "body": d.Body, "categoryName": d.Category,
		},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasDiscussion, graph.KindProject, p.Pipeline.ProjectID, graph.KindDiscussion, d.ID, nil); err != nil {
		return err
	}

	authorKey, err := p.Pipeline.resolveUser(d.Author.ID, d.Author.Login, d.Author.Name, d.Author.Email)
	if err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelCreates, graph.KindUser, authorKey, graph.KindDiscussion, d.ID, nil); err != nil {
		return err
	}

	self := &graph.NodeRef{Kind: graph.KindDiscussion, Key: d.ID}
	for _, c := range d.Comments {
		if err := p.processComment(self, c); err != nil {
			return err
		}
	}
	return nil
}

func (p *DiscussionProcessor) processComment(parent *graph.NodeRef, c DiscussionCommentDoc) error {
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindDiscussionComment, Key: c.ID,
		Properties: map[string]interface{}{"id": c.ID, "body": c.Body, "isAnswer": c.IsAnswer},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasComment, parent.Kind, parent.Key, graph.KindDiscussionComment, c.ID, nil); err != nil {
		return err
	}
	if c.IsAnswer {
		if err := p.Pipeline.addEdge(graph.RelAnswersDiscussion, graph.KindDiscussionComment, c.ID, graph.KindDiscussion, parent.Key, nil); err != nil {
			return err
		}
	}
	authorKey, err := p.Pipeline.resolveUser(c.Author.ID, c.Author.Login, c.Author.Name, c.Author.Email)
	if err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelCreates, graph.KindUser, authorKey, graph.KindDiscussionComment, c.ID, nil); err != nil {
		return err
	}

	self := &graph.NodeRef{Kind: graph.KindDiscussionComment, Key: c.ID}
	for _, reply := range c.Replies {
		if err := p.processReply(self, reply); err != nil {
			return err
		}
	}
	return nil
}

func (p *DiscussionProcessor) processReply(parent *graph.NodeRef, c DiscussionCommentDoc) error {
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindDiscussionComment, Key: c.ID,
		Properties: map[string]interface{}{"id": c.ID, "body": c.Body, "isAnswer": c.IsAnswer},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasReply, parent.Kind, parent.Key, graph.KindDiscussionComment, c.ID, nil); err != nil {
		return err
	}
	authorKey, err := p.Pipeline.resolveUser(c.Author.ID, c.Author.Login, c.Author.Name, c.Author.Email)
	if err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelCreates, graph.KindUser, authorKey, graph.KindDiscussionComment, c.ID, nil)
}
