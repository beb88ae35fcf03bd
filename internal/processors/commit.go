package processors

import (
	"context"
	"strconv"

	"github.com/octoharvest/octoharvest/internal/clone"
	"github.com/octoharvest/octoharvest/internal/graph"
)

// CommitContentProcessor creates the Commit node, buckets it into its
// ProjectCommitMonth, and emits parent-of edges.
type CommitContentProcessor struct {
	Pipeline *Pipeline
}

// CommitContentDoc pairs a cloned commit record with its author date,
// used both for the node properties and the month bucket.
type CommitContentDoc struct {
	Commit      clone.CommitRecord
	CommittedAt string
}

func (p *CommitContentProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(CommitContentDoc)
	hash := d.Commit.Hash

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindCommit,
		Key:  hash,
		Properties: map[string]interface{}{
			"hash": hash, "message": d.Commit.Message, "merge": len(d.Commit.ParentHashes) > 1,
		},
	}); err != nil {
		return err
	}

	bucketID := p.Pipeline.Store.CommitTimeBucketID(p.Pipeline.ProjectID, d.CommittedAt)
	year, month := yearMonth(d.CommittedAt)
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindProjectCommitMonth,
		Key:  bucketID,
		Properties: map[string]interface{}{
			"id": bucketID, "year": year, "month": month,
		},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasCommitMonth, graph.KindProject, p.Pipeline.ProjectID, graph.KindProjectCommitMonth, bucketID,
		map[string]interface{}{"date_month": monthPrefix(d.CommittedAt)}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelCommitInMonth, graph.KindProjectCommitMonth, bucketID, graph.KindCommit, hash, nil); err != nil {
		return err
	}

	for _, parentHash := range d.Commit.ParentHashes {
		if parentHash == "" {
			continue
		}
		if err := p.Pipeline.addEdge(graph.RelParentOf, graph.KindCommit, parentHash, graph.KindCommit, hash, nil); err != nil {
			return err
		}
	}
	return nil
}

// CommitMetaProcessor creates author/committer Users and commit-comment
// threads for a commit already written by CommitContentProcessor.
type CommitMetaProcessor struct {
	Pipeline *Pipeline
}

// CommitMetaDoc carries the REST-only fields (author/committer identity,
// comments) a clone alone can't provide.
type CommitMetaDoc struct {
	Hash            string
	AuthorID        string
	AuthorLogin     string
	AuthorName      string
	AuthorEmail     string
	AuthoredAt      string
	CommitterID     string
	CommitterLogin  string
	CommitterName   string
	CommitterEmail  string
	CommittedAt     string
	Comments        []CommitCommentDoc
}

// CommitCommentDoc is one comment attached to a commit.
type CommitCommentDoc struct {
	ID          string
	Body        string
	CommenterID string
	Login       string
	Name        string
	Email       string
	CreatedAt   string
}

func (p *CommitMetaProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(CommitMetaDoc)

	authorID, err := p.Pipeline.resolveUser(d.AuthorID, d.AuthorLogin, d.AuthorName, d.AuthorEmail)
	if err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelAuthorOf, graph.KindUser, authorID, graph.KindCommit, d.Hash,
		map[string]interface{}{"authoredAt": d.AuthoredAt}); err != nil {
		return err
	}

	committerID, err := p.Pipeline.resolveUser(d.CommitterID, d.CommitterLogin, d.CommitterName, d.CommitterEmail)
	if err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelCommitterOf, graph.KindUser, committerID, graph.KindCommit, d.Hash,
		map[string]interface{}{"committedAt": d.CommittedAt}); err != nil {
		return err
	}

	for _, c := range d.Comments {
		commenterID, err := p.Pipeline.resolveUser(c.CommenterID, c.Login, c.Name, c.Email)
		if err != nil {
			return err
		}
		if err := p.Pipeline.addEdge(graph.RelCommentsOnCommit, graph.KindUser, commenterID, graph.KindCommit, d.Hash,
			map[string]interface{}{"id": c.ID, "body": c.Body, "createdAt": c.CreatedAt}); err != nil {
			return err
		}
	}
	return nil
}

func yearMonth(isoTimestamp string) (int, int) {
	if len(isoTimestamp) < 7 {
		return 0, 0
	}
	year, err := strconv.Atoi(isoTimestamp[0:4])
	if err != nil {
		return 0, 0
	}
	month, err := strconv.Atoi(isoTimestamp[5:7])
	if err != nil {
		return 0, 0
	}
	return year, month
}

func monthPrefix(isoTimestamp string) string {
	if len(isoTimestamp) >= 7 {
		return isoTimestamp[:7]
	}
	return isoTimestamp
}
