// Package model defines the unified record shapes collectors populate
// regardless of source. GraphQL and REST collectors both adapt their
// native responses into these types; every downstream processor consumes
// only this package, never go-github or shurcooL/graphql types directly.
package model

// Issue is shape-identical whether produced by the GraphQL collector or
// the REST fallback collector.
type Issue struct {
	ID     string
	Number int
	Title  string
	Body   string
	State  string
}

// PullRequest mirrors Issue's shape plus the fields pull requests alone
// carry. CommentsHasNextPage records whether the GraphQL collector saw
// more comments than its page could hold, marking this PR for the REST
// follow-up pass.
type PullRequest struct {
	ID                  string
	Number              int
	Title               string
	Body                string
	State               string
	MergeCommitSHA      string
	CommentsHasNextPage bool
}

// Discussion is a repository discussion thread; comments are collected
// separately via the discussion-comment lazy sequence.
type Discussion struct {
	ID     string
	Number int
	Title  string
	Body   string
	Closed bool
}

// DiscussionComment is one page element of a discussion's comment thread.
type DiscussionComment struct {
	ID     string
	Body   string
	Author string
}

// Release is a tagged repository release.
type Release struct {
	ID          string
	Name        string
	PublishedAt string
}

// Label is a repository label definition.
type Label struct {
	ID   string
	Name string
}

// Watcher is a user subscribed to repository notifications.
type Watcher struct {
	ID    string
	Login string
}

// Stargazer is a user who starred the repository, with the timestamp of
// the star itself (only available via the edge, not the node).
type Stargazer struct {
	ID        string
	Login     string
	StarredAt string
}

// Actor is the minimal identity carried by a REST response's nested user
// object; a nil user (a deleted account, a bot with no GraphQL node)
// adapts to a zero Actor and resolves to the sentinel user downstream.
type Actor struct {
	ID, Login, Name, Email string
}

// Review is one pull-request review, collected via REST since the
// GraphQL query tree does not walk review bodies.
type Review struct {
	ID        string
	State     string
	Body      string
	CreatedAt string
	Author    Actor
}

// PullRequestFile is one file a pull request touches.
type PullRequestFile struct {
	SHA        string
	Path       string
	ChangeType string
	Additions  int
	Deletions  int
	Patch      string
}

// CommitMeta carries a commit's GitHub-identity author/committer and
// comment thread, fetched via REST since a bare clone only has the raw
// git author/committer line, not the linked GitHub account.
type CommitMeta struct {
	Hash        string
	Author      Actor
	AuthoredAt  string
	Committer   Actor
	CommittedAt string
	Comments    []CommitComment
}

// CommitComment is one comment attached to a commit.
type CommitComment struct {
	ID        string
	Body      string
	CreatedAt string
	Author    Actor
}

// Workflow is a repository Actions workflow definition and its runs.
type Workflow struct {
	ID    string
	Name  string
	Path  string
	State string
	Runs  []WorkflowRun
}

// WorkflowRun is one execution of a workflow.
type WorkflowRun struct {
	ID              string
	Status          string
	Conclusion      string
	RunAttempt      int
	HeadSHA         string
	Actor           Actor
	TriggeringActor Actor
}

// Dependency is one package entry from a repository's dependency graph.
type Dependency struct {
	Name            string
	VersionInfo     string
	LicenseDeclared string
	Dev             bool
}
