package processors

import (
	"context"
	"strings"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// IssueDoc is the unified shape for an issue, regardless of source
// (GraphQL or REST produce the same shape), enriched with the nested
// collections IssueProcessor recurses into.
type IssueDoc struct {
	ID        string
	Number    int
	Title     string
	Body      string
	State     string
	CreatedAt string

	MilestoneID                string
	MilestoneTitle             string
	MilestoneNumber            int
	MilestoneDueOn             string
	MilestoneState             string
	MilestoneClosedAt          string
	MilestoneOpenIssueCount    int
	MilestoneClosedIssueCount  int

	AuthorID    string
	AuthorLogin string
	AuthorName  string
	AuthorEmail string

	Assignees []UserRef
	Labels    []string
	Comments  []CommentDoc

	ClosedEvent            *ClosedEventDoc
	ConvertedToDiscussion  bool
}

// UserRef is the minimal identity a linked user carries on an issue or PR.
type UserRef struct {
	ID, Login, Name, Email string
}

// CommentDoc is one comment on an issue, PR, or discussion.
type CommentDoc struct {
	ID        string
	Body      string
	CreatedAt string
	Author    UserRef
}

// ClosedEventDoc records who closed an issue/PR and when.
type ClosedEventDoc struct {
	ActorID, ActorLogin, ActorName, ActorEmail string
	ClosedAt                                   string
}

// IssueProcessor creates the Issue node, its month bucket, and recurses
// into milestone/author/assignees/labels/comments/close-event.
type IssueProcessor struct {
	Pipeline *Pipeline
}

func (p *IssueProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(IssueDoc)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindIssue, Key: d.ID,
		Properties: map[string]interface{}{
			"id": d.ID, "number": d.Number, "title": d.Title, "body": d.Body,
			"state": d.State, "convertedToDiscussion": d.ConvertedToDiscussion,
		},
	}); err != nil {
		return err
	}

	bucketID := p.Pipeline.Store.IssueTimeBucketID(p.Pipeline.ProjectID, d.CreatedAt)
	year, month := yearMonth(d.CreatedAt)
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindProjectIssueMonth, Key: bucketID,
		Properties: map[string]interface{}{"id": bucketID, "year": year, "month": month},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasIssueMonth, graph.KindProject, p.Pipeline.ProjectID, graph.KindProjectIssueMonth, bucketID,
		map[string]interface{}{"date_month": monthPrefix(d.CreatedAt)}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelIssueInMonth, graph.KindProjectIssueMonth, bucketID, graph.KindIssue, d.ID, nil); err != nil {
		return err
	}

	self := &graph.NodeRef{Kind: graph.KindIssue, Key: d.ID}
	return p.Pipeline.processSubjectCommon(self, milestoneArgs{
		ID: d.MilestoneID, Title: d.MilestoneTitle, Number: d.MilestoneNumber, DueOn: d.MilestoneDueOn,
		State: d.MilestoneState, ClosedAt: d.MilestoneClosedAt,
		OpenIssueCount: d.MilestoneOpenIssueCount, ClosedIssueCount: d.MilestoneClosedIssueCount,
	}, d.AuthorID, d.AuthorLogin, d.AuthorName, d.AuthorEmail, d.Assignees, d.Labels, d.Comments, d.ClosedEvent, graph.KindIssue)
}

// PullRequestDoc mirrors IssueDoc plus the fields unique to pull requests.
type PullRequestDoc struct {
	IssueDoc
	IsDraft  bool
	Locked   bool
	BaseRef  string
	HeadRef  string
	BaseSHA  string
	HeadSHA  string

	MergedEvent        *MergedEventDoc
	RequestedReviewers []UserRef
	Reviews            []ReviewDoc
	Files              []PullRequestFileDoc
}

// MergedEventDoc records the commit a PR's merge produced and who merged
// it; a missing actor resolves to the sentinel user like any other event.
type MergedEventDoc struct {
	CommitHash                                  string
	MergedAt                                     string
	ActorID, ActorLogin, ActorName, ActorEmail   string
}

// PullRequestProcessor creates the PullRequest node plus everything
// IssueProcessor does, then recurses into reviews, requested reviewers,
// merged-event linkage, and base/head references.
type PullRequestProcessor struct {
	Pipeline *Pipeline
	Reviews  *ReviewProcessor
}

func (p *PullRequestProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(PullRequestDoc)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindPullRequest, Key: d.ID,
		Properties: map[string]interface{}{
			"id": d.ID, "number": d.Number, "title": d.Title, "body": d.Body, "state": d.State,
			"isDraft": d.IsDraft, "locked": d.Locked, "baseRef": d.BaseRef, "headRef": d.HeadRef,
		},
	}); err != nil {
		return err
	}

	bucketID := p.Pipeline.Store.PullRequestTimeBucketID(p.Pipeline.ProjectID, d.CreatedAt)
	year, month := yearMonth(d.CreatedAt)
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindProjectPullRequestMonth, Key: bucketID,
		Properties: map[string]interface{}{"id": bucketID, "year": year, "month": month},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasPullRequestMonth, graph.KindProject, p.Pipeline.ProjectID, graph.KindProjectPullRequestMonth, bucketID,
		map[string]interface{}{"date_month": monthPrefix(d.CreatedAt)}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelPullRequestInMonth, graph.KindProjectPullRequestMonth, bucketID, graph.KindPullRequest, d.ID, nil); err != nil {
		return err
	}

	self := &graph.NodeRef{Kind: graph.KindPullRequest, Key: d.ID}
	if err := p.Pipeline.processSubjectCommon(self, milestoneArgs{
		ID: d.MilestoneID, Title: d.MilestoneTitle, Number: d.MilestoneNumber, DueOn: d.MilestoneDueOn,
		State: d.MilestoneState, ClosedAt: d.MilestoneClosedAt,
		OpenIssueCount: d.MilestoneOpenIssueCount, ClosedIssueCount: d.MilestoneClosedIssueCount,
	}, d.AuthorID, d.AuthorLogin, d.AuthorName, d.AuthorEmail, d.Assignees, d.Labels, d.Comments, d.ClosedEvent, graph.KindPullRequest); err != nil {
		return err
	}

	if d.BaseSHA != "" {
		if err := p.Pipeline.addEdge(graph.RelBaseCommit, graph.KindPullRequest, d.ID, graph.KindCommit, d.BaseSHA, nil); err != nil {
			return err
		}
	}
	if d.HeadSHA != "" {
		if err := p.Pipeline.addEdge(graph.RelHeadCommit, graph.KindPullRequest, d.ID, graph.KindCommit, d.HeadSHA, nil); err != nil {
			return err
		}
	}
	if d.MergedEvent != nil {
		me := d.MergedEvent
		if _, err := p.Pipeline.addPullRequestEvent(graph.KindPullRequest, d.ID, "MergedEvent",
			me.ActorID, me.ActorLogin, me.ActorName, me.ActorEmail, me.CommitHash,
			map[string]interface{}{"mergedAt": me.MergedAt}); err != nil {
			return err
		}
	}
	for _, reviewer := range d.RequestedReviewers {
		userID, err := p.Pipeline.resolveUser(reviewer.ID, reviewer.Login, reviewer.Name, reviewer.Email)
		if err != nil {
			return err
		}
		if err := p.Pipeline.addEdge(graph.RelAssignedTo, graph.KindUser, userID, graph.KindPullRequest, d.ID, nil); err != nil {
			return err
		}
	}
	for _, r := range d.Reviews {
		if p.Reviews == nil {
			continue
		}
		if err := p.Reviews.Process(ctx, self, r); err != nil {
			return err
		}
	}
	for _, f := range d.Files {
		if err := p.processFile(d.ID, f); err != nil {
			return err
		}
	}
	return nil
}

// PullRequestFileDoc is one file a PR touches; captured via GraphQL
// unless PR-file-content capture routes it to the REST pass instead, in
// which case Patch is populated.
type PullRequestFileDoc struct {
	SHA        string
	Path       string
	ChangeType string
	Additions  int
	Deletions  int
	Patch      string
}

func (p *PullRequestProcessor) processFile(prID string, f PullRequestFileDoc) error {
	id := prID + ":" + f.Path
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindPullRequestFile, Key: id,
		Properties: map[string]interface{}{
			"id": id, "sha": f.SHA, "path": f.Path, "changeType": f.ChangeType,
			"additions": f.Additions, "deletions": f.Deletions, "patch": f.Patch,
		},
	}); err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelHasFile, graph.KindPullRequest, prID, graph.KindPullRequestFile, id, nil)
}

// milestoneArgs carries a subject's milestone fields into
// processSubjectCommon; ID empty means the subject has no milestone.
type milestoneArgs struct {
	ID, Title        string
	Number           int
	DueOn, State     string
	ClosedAt         string
	OpenIssueCount   int
	ClosedIssueCount int
}

// progressPercentage is closed/(open+closed)*100, per the coercion
// philosophy of preferring a total, sentinel-bearing function over a
// partial one: an empty milestone (no issues at all) reports 0, not an
// error or a null.
func progressPercentage(open, closed int) float64 {
	total := open + closed
	if total == 0 {
		return 0
	}
	return float64(closed) / float64(total) * 100
}

// processSubjectCommon implements the shared Issue/PullRequest recursion:
// milestone, author, assignees, labels, comments, close event.
func (p *Pipeline) processSubjectCommon(
	self *graph.NodeRef,
	milestone milestoneArgs,
	authorID, authorLogin, authorName, authorEmail string,
	assignees []UserRef, labels []string, comments []CommentDoc,
	closedEvent *ClosedEventDoc, subjectKind graph.NodeKind,
) error {
	if milestone.ID != "" {
		if err := p.Store.AddNode(graph.Node{
			Kind: graph.KindMilestone, Key: milestone.ID,
			Properties: map[string]interface{}{
				"id": milestone.ID, "number": milestone.Number, "title": milestone.Title,
				"dueOn": milestone.DueOn, "state": milestone.State, "closedAt": milestone.ClosedAt,
				"progressPercentage": progressPercentage(milestone.OpenIssueCount, milestone.ClosedIssueCount),
			},
		}); err != nil {
			return err
		}
		if err := p.addEdge(graph.RelHasMilestone, subjectKind, self.Key, graph.KindMilestone, milestone.ID, nil); err != nil {
			return err
		}
	}

	authorKey, err := p.resolveUser(authorID, authorLogin, authorName, authorEmail)
	if err != nil {
		return err
	}
	if err := p.addEdge(graph.RelCreates, graph.KindUser, authorKey, subjectKind, self.Key, nil); err != nil {
		return err
	}

	for _, a := range assignees {
		userKey, err := p.resolveUser(a.ID, a.Login, a.Name, a.Email)
		if err != nil {
			return err
		}
		if err := p.addEdge(graph.RelAssignedTo, graph.KindUser, userKey, subjectKind, self.Key, nil); err != nil {
			return err
		}
	}

	for _, label := range labels {
		if label == "" {
			continue
		}
		if err := p.Store.AddNode(graph.Node{
			Kind: graph.KindLabel, Key: label,
			Properties: map[string]interface{}{"id": label, "name": label},
		}); err != nil {
			return err
		}
		if err := p.addEdge(graph.RelHasLabel, subjectKind, self.Key, graph.KindLabel, label, nil); err != nil {
			return err
		}
	}

	for _, c := range comments {
		commenterKey, err := p.resolveUser(c.Author.ID, c.Author.Login, c.Author.Name, c.Author.Email)
		if err != nil {
			return err
		}
		if err := p.addEdge(graph.RelCommentsOn, graph.KindUser, commenterKey, subjectKind, self.Key,
			map[string]interface{}{"id": c.ID, "body": c.Body, "createdAt": c.CreatedAt}); err != nil {
			return err
		}
	}

	if closedEvent != nil {
		if _, err := p.addPullRequestEvent(subjectKind, self.Key, "ClosedEvent",
			closedEvent.ActorID, closedEvent.ActorLogin, closedEvent.ActorName, closedEvent.ActorEmail, "",
			map[string]interface{}{"closedAt": closedEvent.ClosedAt}); err != nil {
			return err
		}
	}

	return nil
}

// addPullRequestEvent creates a PullRequestEvent node for an Issue/PR
// timeline event, wires HAS_EVENT from the subject and ACTOR_OF/TRIGGERS
// from the (possibly sentinel-resolved) actor, and, when commitHash is
// non-empty, LINKS_COMMIT from the event to the commit it produced.
// eventProps are set on the event node alongside id/__typename.
func (p *Pipeline) addPullRequestEvent(
	subjectKind graph.NodeKind, subjectKey, typeName string,
	actorID, actorLogin, actorName, actorEmail, commitHash string,
	eventProps map[string]interface{},
) (string, error) {
	eventID := subjectKey + ":" + strings.ToLower(typeName)

	props := map[string]interface{}{"id": eventID, "__typename": typeName}
	for k, v := range eventProps {
		props[k] = v
	}
	if err := p.Store.AddNode(graph.Node{Kind: graph.KindPullRequestEvent, Key: eventID, Properties: props}); err != nil {
		return "", err
	}
	if err := p.addEdge(graph.RelHasEvent, subjectKind, subjectKey, graph.KindPullRequestEvent, eventID, nil); err != nil {
		return "", err
	}

	actorKey, err := p.resolveUser(actorID, actorLogin, actorName, actorEmail)
	if err != nil {
		return "", err
	}
	if err := p.addEdge(graph.RelActorOf, graph.KindUser, actorKey, graph.KindPullRequestEvent, eventID, nil); err != nil {
		return "", err
	}
	if err := p.addEdge(graph.RelTriggers, graph.KindUser, actorKey, graph.KindPullRequestEvent, eventID, nil); err != nil {
		return "", err
	}

	if commitHash != "" {
		if err := p.addEdge(graph.RelLinksCommit, graph.KindPullRequestEvent, eventID, graph.KindCommit, commitHash, nil); err != nil {
			return "", err
		}
	}
	return eventID, nil
}
