package collectors

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/octoharvest/octoharvest/internal/githubapi"
	"github.com/octoharvest/octoharvest/internal/model"
)

// RESTCollector adapts go-github responses into the shared model types.
// This adapter is the only place in the codebase that knows about
// go-github's REST shapes.
type RESTCollector struct {
	wrapper *githubapi.RESTWrapper
	owner   string
	name    string
}

// NewRESTCollector builds a collector bound to an already-acquired REST
// wrapper for one repository.
func NewRESTCollector(wrapper *githubapi.RESTWrapper, owner, name string) *RESTCollector {
	return &RESTCollector{wrapper: wrapper, owner: owner, name: name}
}

// GetIssues fetches exactly the given issue numbers via REST, producing
// records shape-identical to the GraphQL collector's model.Issue.
func (c *RESTCollector) GetIssues(ctx context.Context, numbers []int) ([]model.Issue, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0, len(numbers))
	for _, n := range numbers {
		issue, resp, err := client.Issues.Get(ctx, c.owner, c.name, n)
		if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
			return issues, fmt.Errorf("rest issue #%d: %w", n, rateErr)
		}
		if err != nil {
			return issues, fmt.Errorf("rest issue #%d: %w", n, err)
		}
		issues = append(issues, adaptIssue(issue))
	}
	return issues, nil
}

// GetPullRequests fetches exactly the given pull-request numbers via
// REST, producing records shape-identical to the GraphQL collector's
// model.PullRequest.
func (c *RESTCollector) GetPullRequests(ctx context.Context, numbers []int) ([]model.PullRequest, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}

	prs := make([]model.PullRequest, 0, len(numbers))
	for _, n := range numbers {
		pr, resp, err := client.PullRequests.Get(ctx, c.owner, c.name, n)
		if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
			return prs, fmt.Errorf("rest pull request #%d: %w", n, rateErr)
		}
		if err != nil {
			return prs, fmt.Errorf("rest pull request #%d: %w", n, err)
		}
		prs = append(prs, adaptPullRequest(pr))
	}
	return prs, nil
}

// GetPullRequestReviews fetches every review left on a pull request.
func (c *RESTCollector) GetPullRequestReviews(ctx context.Context, number int) ([]model.Review, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Review
	opts := &github.ListOptions{PerPage: 100}
	for {
		reviews, resp, err := client.PullRequests.ListReviews(ctx, c.owner, c.name, number, opts)
		if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
			return out, fmt.Errorf("rest reviews for pull request #%d: %w", number, rateErr)
		}
		if err != nil {
			return out, fmt.Errorf("rest reviews for pull request #%d: %w", number, err)
		}
		for _, r := range reviews {
			out = append(out, model.Review{
				ID: fmt.Sprintf("%d", r.GetID()), State: r.GetState(), Body: r.GetBody(),
				CreatedAt: r.GetSubmittedAt().Format(timeLayout),
				Author:    adaptActor(r.User),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// GetPullRequestReviewers fetches a pull request's currently requested
// reviewers (teams are flattened out; only individual accounts link to
// a User node).
func (c *RESTCollector) GetPullRequestReviewers(ctx context.Context, number int) ([]model.Actor, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}
	reviewers, resp, err := client.PullRequests.ListReviewers(ctx, c.owner, c.name, number, nil)
	if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
		return nil, fmt.Errorf("rest reviewers for pull request #%d: %w", number, rateErr)
	}
	if err != nil {
		return nil, fmt.Errorf("rest reviewers for pull request #%d: %w", number, err)
	}
	out := make([]model.Actor, 0, len(reviewers.Users))
	for _, u := range reviewers.Users {
		out = append(out, adaptActor(u))
	}
	return out, nil
}

// GetPullRequestFiles fetches every file a pull request touches.
func (c *RESTCollector) GetPullRequestFiles(ctx context.Context, number int) ([]model.PullRequestFile, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.PullRequestFile
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := client.PullRequests.ListFiles(ctx, c.owner, c.name, number, opts)
		if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
			return out, fmt.Errorf("rest files for pull request #%d: %w", number, rateErr)
		}
		if err != nil {
			return out, fmt.Errorf("rest files for pull request #%d: %w", number, err)
		}
		for _, f := range files {
			out = append(out, model.PullRequestFile{
				SHA: f.GetSHA(), Path: f.GetFilename(), ChangeType: f.GetStatus(),
				Additions: f.GetAdditions(), Deletions: f.GetDeletions(), Patch: f.GetPatch(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// GetCommitMeta fetches a commit's GitHub-identity author/committer and
// comment thread, filling the gap a bare clone leaves (a raw git
// author/committer line has no linked GitHub account).
func (c *RESTCollector) GetCommitMeta(ctx context.Context, hash string) (model.CommitMeta, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return model.CommitMeta{}, err
	}
	commit, resp, err := client.Repositories.GetCommit(ctx, c.owner, c.name, hash, nil)
	if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
		return model.CommitMeta{}, fmt.Errorf("rest commit %s: %w", hash, rateErr)
	}
	if err != nil {
		return model.CommitMeta{}, fmt.Errorf("rest commit %s: %w", hash, err)
	}

	meta := model.CommitMeta{
		Hash:      hash,
		Author:    adaptActor(commit.Author),
		Committer: adaptActor(commit.Committer),
	}
	if gc := commit.GetCommit(); gc != nil {
		if a := gc.GetAuthor(); a != nil {
			meta.AuthoredAt = a.GetDate().Format(timeLayout)
			if meta.Author.Name == "" {
				meta.Author.Name, meta.Author.Email = a.GetName(), a.GetEmail()
			}
		}
		if cm := gc.GetCommitter(); cm != nil {
			meta.CommittedAt = cm.GetDate().Format(timeLayout)
			if meta.Committer.Name == "" {
				meta.Committer.Name, meta.Committer.Email = cm.GetName(), cm.GetEmail()
			}
		}
	}

	comments, resp, err := client.Repositories.ListCommitComments(ctx, c.owner, c.name, hash, nil)
	if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
		return meta, fmt.Errorf("rest commit comments %s: %w", hash, rateErr)
	}
	if err != nil {
		return meta, fmt.Errorf("rest commit comments %s: %w", hash, err)
	}
	for _, cm := range comments {
		meta.Comments = append(meta.Comments, model.CommitComment{
			ID: fmt.Sprintf("%d", cm.GetID()), Body: cm.GetBody(),
			CreatedAt: cm.GetCreatedAt().Format(timeLayout), Author: adaptActor(cm.User),
		})
	}
	return meta, nil
}

// GetWorkflows fetches every Actions workflow defined in the repository
// along with its run history.
func (c *RESTCollector) GetWorkflows(ctx context.Context) ([]model.Workflow, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}
	workflows, resp, err := client.Actions.ListWorkflows(ctx, c.owner, c.name, nil)
	if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
		return nil, fmt.Errorf("rest workflows: %w", rateErr)
	}
	if err != nil {
		return nil, fmt.Errorf("rest workflows: %w", err)
	}

	out := make([]model.Workflow, 0, len(workflows.Workflows))
	for _, w := range workflows.Workflows {
		wf := model.Workflow{
			ID: fmt.Sprintf("%d", w.GetID()), Name: w.GetName(), Path: w.GetPath(), State: w.GetState(),
		}
		runs, resp, err := client.Actions.ListWorkflowRunsByID(ctx, c.owner, c.name, w.GetID(), nil)
		if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
			return out, fmt.Errorf("rest workflow runs for %s: %w", wf.ID, rateErr)
		}
		if err != nil {
			return out, fmt.Errorf("rest workflow runs for %s: %w", wf.ID, err)
		}
		for _, r := range runs.WorkflowRuns {
			wf.Runs = append(wf.Runs, model.WorkflowRun{
				ID: fmt.Sprintf("%d", r.GetID()), Status: r.GetStatus(), Conclusion: r.GetConclusion(),
				RunAttempt: r.GetRunAttempt(), HeadSHA: r.GetHeadSHA(),
				Actor: adaptActor(r.Actor), TriggeringActor: adaptActor(r.TriggeringActor),
			})
		}
		out = append(out, wf)
	}
	return out, nil
}

// GetDependencies fetches the repository's dependency graph as an SBOM
// and adapts its packages into flat dependency records.
func (c *RESTCollector) GetDependencies(ctx context.Context) ([]model.Dependency, error) {
	client, err := c.wrapper.Client(ctx)
	if err != nil {
		return nil, err
	}
	sbom, resp, err := client.DependencyGraph.GetSBOM(ctx, c.owner, c.name)
	if rateErr := c.wrapper.CheckRate(ctx, resp, err); rateErr != nil {
		return nil, fmt.Errorf("rest sbom: %w", rateErr)
	}
	if err != nil {
		return nil, fmt.Errorf("rest sbom: %w", err)
	}
	if sbom.SBOM == nil {
		return nil, nil
	}

	out := make([]model.Dependency, 0, len(sbom.SBOM.Packages))
	for _, pkg := range sbom.SBOM.Packages {
		out = append(out, model.Dependency{
			Name: pkg.GetName(), VersionInfo: pkg.GetVersionInfo(), LicenseDeclared: pkg.GetLicenseConcluded(),
		})
	}
	return out, nil
}

const timeLayout = "2006-01-02T15:04:05Z"

func adaptActor(u *github.User) model.Actor {
	if u == nil {
		return model.Actor{}
	}
	return model.Actor{ID: fmt.Sprintf("%d", u.GetID()), Login: u.GetLogin(), Name: u.GetName(), Email: u.GetEmail()}
}

func adaptIssue(i *github.Issue) model.Issue {
	return model.Issue{
		ID:     fmt.Sprintf("%d", i.GetID()),
		Number: i.GetNumber(),
		Title:  i.GetTitle(),
		Body:   i.GetBody(),
		State:  i.GetState(),
	}
}

func adaptPullRequest(p *github.PullRequest) model.PullRequest {
	return model.PullRequest{
		ID:             fmt.Sprintf("%d", p.GetID()),
		Number:         p.GetNumber(),
		Title:          p.GetTitle(),
		Body:           p.GetBody(),
		State:          p.GetState(),
		MergeCommitSHA: p.GetMergeCommitSHA(),
	}
}
