// Package worker runs one repository's pipeline end-to-end (a "repository
// worker") and polls a fixed-size pool of them across a repository list
// (a "thread pool").
package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/octoharvest/octoharvest/internal/clone"
	"github.com/octoharvest/octoharvest/internal/collectors"
	"github.com/octoharvest/octoharvest/internal/config"
	"github.com/octoharvest/octoharvest/internal/database"
	"github.com/octoharvest/octoharvest/internal/githubapi"
	"github.com/octoharvest/octoharvest/internal/graph"
	"github.com/octoharvest/octoharvest/internal/loader"
	"github.com/octoharvest/octoharvest/internal/model"
	"github.com/octoharvest/octoharvest/internal/processors"
	"github.com/octoharvest/octoharvest/internal/querytree"
	"github.com/octoharvest/octoharvest/internal/storage"
)

// commitCollectionConcurrency bounds the fan-out of per-commit
// file-diff/metadata collection within a single branch.
const commitCollectionConcurrency = 8

// Repository is one line of the repository list: its clone URL and the
// owner/name pair derived from it.
type Repository struct {
	URL   string
	Owner string
	Name  string
}

// RepositoryWorker runs a single repository's pipeline: delete stale
// files, collect via GraphQL then REST, clone-derived history, bulk load,
// then tear everything down.
type RepositoryWorker struct {
	Config  *config.Config
	Pool    *githubapi.Factory
	Backend graph.Backend
	Ledger  *database.Ledger
	Log     *logrus.Entry
}

// Run executes the full pipeline for one repository.
func (w *RepositoryWorker) Run(ctx context.Context, repo Repository) error {
	fullName := repo.Owner + "/" + repo.Name
	log := w.Log.WithField("repo", fullName)

	if err := w.Ledger.Start(ctx, fullName); err != nil {
		log.WithError(err).Warn("ledger start failed, continuing without status tracking")
	}

	paths := w.Config.ResolvePaths()
	store, err := storage.New(paths.IntermediateDir, fullName)
	if err != nil {
		return w.fail(ctx, fullName, fmt.Errorf("preparing intermediate storage: %w", err))
	}

	pipeline := &processors.Pipeline{Store: store}

	stats, runErr := w.collectAndLoad(ctx, repo, pipeline, paths, log)

	if err := w.Pool.Close(); err != nil {
		log.WithError(err).Warn("closing api clients")
	}
	if err := store.Close(); err != nil {
		log.WithError(err).Warn("closing intermediate storage")
	}
	if err := store.Remove(); err != nil {
		log.WithError(err).Warn("removing intermediate storage")
	}

	if runErr != nil {
		return w.fail(ctx, fullName, runErr)
	}
	if err := w.Ledger.Finish(ctx, fullName, database.RunLoaded, stats.NodesWritten, stats.EdgesWritten, nil); err != nil {
		log.WithError(err).Warn("ledger finish failed")
	}
	return nil
}

func (w *RepositoryWorker) fail(ctx context.Context, fullName string, err error) error {
	if finishErr := w.Ledger.Finish(ctx, fullName, database.RunFailed, 0, 0, err); finishErr != nil {
		w.Log.WithError(finishErr).Warn("ledger finish-on-failure failed")
	}
	return err
}

func (w *RepositoryWorker) collectAndLoad(ctx context.Context, repo Repository, pipeline *processors.Pipeline, paths config.Paths, log *logrus.Entry) (loader.Stats, error) {
	var stats loader.Stats

	// (a) project, via GraphQL.
	gql, err := w.Pool.GraphQL(ctx)
	if err != nil {
		return stats, fmt.Errorf("starting graphql wrapper: %w", err)
	}
	projectID, err := w.collectProject(ctx, gql, repo, pipeline)
	if err != nil {
		return stats, fmt.Errorf("collecting project: %w", err)
	}
	pipeline.ProjectID = projectID

	// REST wrapper acquired up front: commit metadata and PR sub-field
	// enrichment both need it before (c)-(j) run, not just for the
	// issue/PR follow-up pass.
	rest, err := w.Pool.REST(ctx)
	if err != nil {
		return stats, fmt.Errorf("starting rest wrapper: %w", err)
	}
	restColl := collectors.NewRESTCollector(rest, repo.Owner, repo.Name)

	// (b) commit content / file actions / branches, via clone; (l) commit
	// author/committer identity and comment threads, via REST.
	if err := w.collectFromClone(ctx, repo, pipeline, paths, restColl, log); err != nil {
		log.WithError(err).Warn("clone-derived collection incomplete")
	}

	// (c)-(h): partial issues, pull requests, discussions, stargazers,
	// watchers, releases, labels — all via the GraphQL query tree, with
	// reviews/reviewers/files enriched onto each pull request via REST.
	partial, err := w.collectGraphQLRounds(ctx, gql, repo, pipeline, restColl, log)
	if err != nil {
		return stats, fmt.Errorf("graphql rounds: %w", err)
	}

	// (i) remaining issues, (j) remaining pull requests, via REST.
	if err := w.collectRESTFollowUp(ctx, rest, repo, pipeline, partial); err != nil {
		log.WithError(err).Warn("rest follow-up collection incomplete")
	}

	// (k) dependency graph, (n) workflows and their runs, via REST.
	if err := w.collectDependencies(ctx, restColl, pipeline); err != nil {
		log.WithError(err).Warn("dependency collection incomplete")
	}
	if err := w.collectWorkflows(ctx, restColl, pipeline); err != nil {
		log.WithError(err).Warn("workflow collection incomplete")
	}

	// Bulk load, then both cross-link passes.
	allNodes := pipeline.Store.Nodes()
	l := loader.New(w.Backend, log)
	stats, err = l.Load(allNodes, pipeline.Store.Edges())
	if err != nil {
		return stats, fmt.Errorf("bulk load: %w", err)
	}

	if err := l.CrossLink(pipeline.ProjectID, textRefs(allNodes)); err != nil {
		log.WithError(err).Warn("cross-link pass incomplete")
	}
	return stats, nil
}

// textRefTypes are the properties cross-link pass 1 scans for issue/PR
// references, per the node kinds graph.PropertyTypes declares them on.
var textRefTypes = []string{"title", "body", "message"}

func textRefs(nodes []graph.Node) []loader.TextRef {
	var refs []loader.TextRef
	for _, n := range nodes {
		types := graph.PropertyTypes(n.Kind)
		var parts []string
		for _, name := range textRefTypes {
			if pt, ok := types[name]; !ok || pt != graph.TypeString {
				continue
			}
			if s, ok := n.Properties[name].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			continue
		}
		refs = append(refs, loader.TextRef{Kind: n.Kind, Key: n.Key, Text: strings.Join(parts, "\n")})
	}
	return refs
}

func (w *RepositoryWorker) collectProject(ctx context.Context, gql *githubapi.GraphQLWrapper, repo Repository, pipeline *processors.Pipeline) (string, error) {
	var query projectQuery
	vars := map[string]interface{}{"owner": repo.Owner, "name": repo.Name}
	remaining := func() (int, string) { return int(query.RateLimit.Remaining), string(query.RateLimit.ResetAt) }
	if err := gql.Execute(ctx, &query, vars, remaining); err != nil {
		return "", err
	}

	r := query.Repository
	doc := processors.ProjectDoc{
		ID: string(r.ID), URL: string(r.URL), Name: string(r.Name), Visibility: string(r.Visibility),
		IsArchived: bool(r.IsArchived), DiskUsage: int(r.DiskUsage),
		OwnerIsOrg: string(r.Owner.TypeName) == "Organization",
		OwnerID:    string(r.Owner.ID), OwnerLogin: string(r.Owner.Login),
		LicenseSPDXID: string(r.LicenseInfo.SpdxID),
	}
	for _, t := range r.RepositoryTopics.Nodes {
		doc.Topics = append(doc.Topics, string(t.Topic.Name))
	}
	for _, l := range r.Languages.Nodes {
		doc.Languages = append(doc.Languages, string(l.Name))
	}

	proc := &processors.ProjectProcessor{Pipeline: pipeline}
	if err := proc.Process(ctx, nil, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (w *RepositoryWorker) collectFromClone(ctx context.Context, repo Repository, pipeline *processors.Pipeline, paths config.Paths, restColl *collectors.RESTCollector, log *logrus.Entry) error {
	r, err := clone.Clone(ctx, paths.CloneDir, repo.Owner+"/"+repo.Name, repo.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Remove(); err != nil {
			log.WithError(err).Warn("removing clone")
		}
	}()

	branches, err := r.ListBranches(ctx)
	if err != nil {
		return err
	}

	commitProc := &processors.CommitContentProcessor{Pipeline: pipeline}
	commitMetaProc := &processors.CommitMetaProcessor{Pipeline: pipeline}
	branchProc := &processors.BranchProcessor{Pipeline: pipeline}

	for _, branch := range branches {
		commits, err := r.ListCommits(ctx, "origin/"+branch)
		if err != nil {
			log.WithError(err).WithField("branch", branch).Warn("listing commits")
			continue
		}

		var hashes []string
		for _, c := range commits {
			hashes = append(hashes, c.Hash)
			if err := commitProc.Process(ctx, nil, processors.CommitContentDoc{Commit: c, CommittedAt: c.AuthorDate}); err != nil {
				return err
			}
		}

		// File-diff enumeration and commit-metadata collection are both
		// per-commit, read-only against the clone, and write through
		// Store's own mutex, so they fan out across commits instead of
		// running one at a time.
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(commitCollectionConcurrency)
		for _, c := range commits {
			c := c
			group.Go(func() error {
				changes, err := r.CommitFileChanges(groupCtx, c.Hash, c.ParentHashes)
				if err != nil {
					return nil
				}
				for _, change := range changes {
					if err := w.processFileAction(groupCtx, pipeline, c.Hash, change, r); err != nil {
						log.WithError(err).Warn("processing file action")
					}
				}
				meta, err := restColl.GetCommitMeta(groupCtx, c.Hash)
				if err != nil {
					log.WithError(err).WithField("commit", c.Hash).Warn("collecting commit metadata")
					return nil
				}
				return commitMetaProc.Process(groupCtx, nil, commitMetaFromModel(meta))
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}

		headHash := ""
		if len(commits) > 0 {
			headHash = commits[len(commits)-1].Hash
		}
		if err := branchProc.Process(ctx, nil, processors.BranchDoc{
			Name: branch, HeadCommitHash: headHash, ReachableCommits: hashes,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *RepositoryWorker) processFileAction(ctx context.Context, pipeline *processors.Pipeline, hash string, change clone.FileChange, r *clone.Repo) error {
	proc := &processors.FileActionProcessor{Pipeline: pipeline}
	doc := processors.FileActionDoc{CommitHash: hash, Change: change}
	return proc.Process(ctx, nil, doc)
}

func (w *RepositoryWorker) collectGraphQLRounds(ctx context.Context, gql *githubapi.GraphQLWrapper, repo Repository, pipeline *processors.Pipeline, restColl *collectors.RESTCollector, log *logrus.Entry) (collectors.PartiallyCollected, error) {
	var partial collectors.PartiallyCollected
	coll := collectors.NewGraphQLCollector(gql, repo.Owner, repo.Name)
	roots := []querytree.RootKind{
		querytree.RootPullRequests, querytree.RootIssues, querytree.RootDiscussions,
		querytree.RootReleases, querytree.RootLabels, querytree.RootWatchers, querytree.RootStargazers,
	}
	rounds, _ := coll.Get(ctx, roots, nil)

	issueProc := &processors.IssueProcessor{Pipeline: pipeline}
	prProc := &processors.PullRequestProcessor{Pipeline: pipeline, Reviews: &processors.ReviewProcessor{Pipeline: pipeline}}
	discussionProc := &processors.DiscussionProcessor{Pipeline: pipeline}
	simple := &processors.SimpleLinkProcessor{Pipeline: pipeline}

	for round := range rounds {
		if round.Err != nil {
			return partial, round.Err
		}
		for _, issue := range round.Result.Issues {
			if err := issueProc.Process(ctx, nil, issueFromModel(issue)); err != nil {
				return partial, err
			}
		}
		for _, pr := range round.Result.PullRequests {
			doc := prFromModel(pr)
			w.enrichPullRequest(ctx, restColl, pr.Number, &doc, log)
			if err := prProc.Process(ctx, nil, doc); err != nil {
				return partial, err
			}
		}
		for _, d := range round.Result.Discussions {
			doc := discussionFromModel(d)
			comments, err := w.collectDiscussionComments(ctx, gql, repo, d.Number)
			if err != nil {
				log := w.Log
				log.WithError(err).WithField("discussion", d.Number).Warn("collecting discussion comments")
			} else {
				doc.Comments = comments
			}
			if err := discussionProc.Process(ctx, nil, doc); err != nil {
				return partial, err
			}
		}
		for _, rel := range round.Result.Releases {
			if err := simple.Release(rel); err != nil {
				return partial, err
			}
		}
		for _, l := range round.Result.Labels {
			if err := simple.Label(l); err != nil {
				return partial, err
			}
		}
		for _, watcher := range round.Result.Watchers {
			if err := simple.Watcher(watcher); err != nil {
				return partial, err
			}
		}
		for _, star := range round.Result.Stargazers {
			if err := simple.Stargazer(star); err != nil {
				return partial, err
			}
		}
		partial.IssueNumbers = append(partial.IssueNumbers, round.Partial.IssueNumbers...)
		partial.PullRequestNumbers = append(partial.PullRequestNumbers, round.Partial.PullRequestNumbers...)
	}
	return partial, nil
}

func (w *RepositoryWorker) collectRESTFollowUp(ctx context.Context, rest *githubapi.RESTWrapper, repo Repository, pipeline *processors.Pipeline, partial collectors.PartiallyCollected) error {
	coll := collectors.NewRESTCollector(rest, repo.Owner, repo.Name)
	issueProc := &processors.IssueProcessor{Pipeline: pipeline}
	prProc := &processors.PullRequestProcessor{Pipeline: pipeline, Reviews: &processors.ReviewProcessor{Pipeline: pipeline}}

	if len(partial.IssueNumbers) > 0 {
		issues, err := coll.GetIssues(ctx, partial.IssueNumbers)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			if err := issueProc.Process(ctx, nil, issueFromModel(issue)); err != nil {
				return err
			}
		}
	}
	if len(partial.PullRequestNumbers) > 0 {
		prs, err := coll.GetPullRequests(ctx, partial.PullRequestNumbers)
		if err != nil {
			return err
		}
		for _, pr := range prs {
			doc := prFromModel(pr)
			w.enrichPullRequest(ctx, coll, pr.Number, &doc, w.Log)
			if err := prProc.Process(ctx, nil, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func issueFromModel(i model.Issue) processors.IssueDoc {
	return processors.IssueDoc{ID: i.ID, Number: i.Number, Title: i.Title, Body: i.Body, State: i.State}
}

func prFromModel(pr model.PullRequest) processors.PullRequestDoc {
	doc := processors.PullRequestDoc{
		IssueDoc: processors.IssueDoc{ID: pr.ID, Number: pr.Number, Title: pr.Title, Body: pr.Body, State: pr.State},
	}
	if pr.MergeCommitSHA != "" {
		doc.MergedEvent = &processors.MergedEventDoc{CommitHash: pr.MergeCommitSHA}
	}
	return doc
}

// enrichPullRequest fills in the fields only REST exposes: reviews,
// currently requested reviewers, and the touched-file list. Collection
// failures are logged and leave the corresponding field empty rather
// than failing the whole pull request.
func (w *RepositoryWorker) enrichPullRequest(ctx context.Context, coll *collectors.RESTCollector, number int, doc *processors.PullRequestDoc, log *logrus.Entry) {
	if reviews, err := coll.GetPullRequestReviews(ctx, number); err != nil {
		log.WithError(err).WithField("pull_request", number).Warn("collecting reviews")
	} else {
		for _, r := range reviews {
			doc.Reviews = append(doc.Reviews, processors.ReviewDoc{
				ID: r.ID, State: r.State, Body: r.Body, SubmittedAt: r.CreatedAt,
				Author: processors.UserRef{ID: r.Author.ID, Login: r.Author.Login, Name: r.Author.Name, Email: r.Author.Email},
			})
		}
	}

	if reviewers, err := coll.GetPullRequestReviewers(ctx, number); err != nil {
		log.WithError(err).WithField("pull_request", number).Warn("collecting requested reviewers")
	} else {
		for _, a := range reviewers {
			doc.RequestedReviewers = append(doc.RequestedReviewers, processors.UserRef{ID: a.ID, Login: a.Login, Name: a.Name, Email: a.Email})
		}
	}

	if files, err := coll.GetPullRequestFiles(ctx, number); err != nil {
		log.WithError(err).WithField("pull_request", number).Warn("collecting files")
	} else {
		for _, f := range files {
			patch := f.Patch
			if !w.Config.PullRequestFileContent {
				patch = ""
			}
			doc.Files = append(doc.Files, processors.PullRequestFileDoc{
				SHA: f.SHA, Path: f.Path, ChangeType: f.ChangeType, Additions: f.Additions, Deletions: f.Deletions, Patch: patch,
			})
		}
	}
}

func commitMetaFromModel(m model.CommitMeta) processors.CommitMetaDoc {
	doc := processors.CommitMetaDoc{
		Hash:           m.Hash,
		AuthorID:       m.Author.ID, AuthorLogin: m.Author.Login, AuthorName: m.Author.Name, AuthorEmail: m.Author.Email,
		AuthoredAt:     m.AuthoredAt,
		CommitterID:    m.Committer.ID, CommitterLogin: m.Committer.Login, CommitterName: m.Committer.Name, CommitterEmail: m.Committer.Email,
		CommittedAt:    m.CommittedAt,
	}
	for _, c := range m.Comments {
		doc.Comments = append(doc.Comments, processors.CommitCommentDoc{
			ID: c.ID, Body: c.Body, CreatedAt: c.CreatedAt,
			CommenterID: c.Author.ID, Login: c.Author.Login, Name: c.Author.Name, Email: c.Author.Email,
		})
	}
	return doc
}

func (w *RepositoryWorker) collectDependencies(ctx context.Context, coll *collectors.RESTCollector, pipeline *processors.Pipeline) error {
	deps, err := coll.GetDependencies(ctx)
	if err != nil {
		return err
	}
	simple := &processors.SimpleLinkProcessor{Pipeline: pipeline}
	for _, d := range deps {
		if err := simple.Dependency(processors.DependencyDoc{Name: d.Name, Version: d.VersionInfo, LicenseDeclared: d.LicenseDeclared, Dev: d.Dev}); err != nil {
			return err
		}
	}
	return nil
}

func (w *RepositoryWorker) collectWorkflows(ctx context.Context, coll *collectors.RESTCollector, pipeline *processors.Pipeline) error {
	workflows, err := coll.GetWorkflows(ctx)
	if err != nil {
		return err
	}
	proc := &processors.WorkflowProcessor{Pipeline: pipeline}
	for _, wf := range workflows {
		doc := processors.WorkflowDoc{ID: wf.ID, Title: wf.Name, ConfigPath: wf.Path, State: wf.State}
		for _, r := range wf.Runs {
			doc.Runs = append(doc.Runs, processors.WorkflowRunDoc{
				ID: r.ID, Status: r.Status, Conclusion: r.Conclusion, Attempts: r.RunAttempt, HeadCommitHash: r.HeadSHA,
				Actor:           processors.UserRef{ID: r.Actor.ID, Login: r.Actor.Login, Name: r.Actor.Name, Email: r.Actor.Email},
				TriggeringActor: processors.UserRef{ID: r.TriggeringActor.ID, Login: r.TriggeringActor.Login, Name: r.TriggeringActor.Name, Email: r.TriggeringActor.Email},
			})
		}
		if err := proc.Process(ctx, nil, doc); err != nil {
			return err
		}
	}
	return nil
}

func discussionFromModel(d model.Discussion) processors.DiscussionDoc {
	return processors.DiscussionDoc{ID: d.ID, Number: d.Number, Title: d.Title, Body: d.Body, Closed: d.Closed}
}

// collectDiscussionComments drains a discussion's comment pages to
// completion; replies are not separately addressable via this query so
// they arrive flattened into the top-level comment list, a documented
// simplification of full reply recursion.
func (w *RepositoryWorker) collectDiscussionComments(ctx context.Context, gql *githubapi.GraphQLWrapper, repo Repository, number int) ([]processors.DiscussionCommentDoc, error) {
	pages, _ := collectors.GetDiscussionComments(ctx, gql, repo.Owner, repo.Name, number)
	var comments []processors.DiscussionCommentDoc
	for page := range pages {
		if page.Err != nil {
			return comments, page.Err
		}
		for _, c := range page.Comments {
			comments = append(comments, processors.DiscussionCommentDoc{
				ID:     c.ID,
				Body:   c.Body,
				Author: processors.UserRef{Login: c.Author},
			})
		}
	}
	return comments, nil
}
