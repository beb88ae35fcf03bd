package processors

import (
	"context"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// WorkflowDoc is a repository workflow definition and its runs.
type WorkflowDoc struct {
	ID         string
	Title      string
	ConfigPath string
	State      string
	Runs       []WorkflowRunDoc
}

// WorkflowRunDoc is one execution of a workflow.
type WorkflowRunDoc struct {
	ID             string
	Status         string
	Conclusion     string
	Attempts       int
	HeadCommitHash string
	Actor          UserRef
	TriggeringActor UserRef
}

// WorkflowProcessor creates the Workflow node and its runs.
type WorkflowProcessor struct {
	Pipeline *Pipeline
}

func (p *WorkflowProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(WorkflowDoc)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindWorkflow, Key: d.ID,
		Properties: map[string]interface{}{
			"id": d.ID, "title": d.Title, "configPath": d.ConfigPath, "state": d.State,
		},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasWorkflow, graph.KindProject, p.Pipeline.ProjectID, graph.KindWorkflow, d.ID, nil); err != nil {
		return err
	}

	for _, run := range d.Runs {
		if err := p.processRun(d.ID, run); err != nil {
			return err
		}
	}
	return nil
}

func (p *WorkflowProcessor) processRun(workflowID string, r WorkflowRunDoc) error {
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindWorkflowRun, Key: r.ID,
		Properties: map[string]interface{}{
			"id": r.ID, "status": r.Status, "conclusion": r.Conclusion, "attempts": r.Attempts,
		},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasWorkflowRun, graph.KindWorkflow, workflowID, graph.KindWorkflowRun, r.ID, nil); err != nil {
		return err
	}
	if r.HeadCommitHash != "" {
		if err := p.Pipeline.addEdge(graph.RelWorkflowRunOfCommit, graph.KindWorkflowRun, r.ID, graph.KindCommit, r.HeadCommitHash, nil); err != nil {
			return err
		}
	}

	actorKey, err := p.Pipeline.resolveUser(r.Actor.ID, r.Actor.Login, r.Actor.Name, r.Actor.Email)
	if err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelCreatesWorkflowRun, graph.KindUser, actorKey, graph.KindWorkflowRun, r.ID, nil); err != nil {
		return err
	}

	triggerKey, err := p.Pipeline.resolveUser(r.TriggeringActor.ID, r.TriggeringActor.Login, r.TriggeringActor.Name, r.TriggeringActor.Email)
	if err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelTriggersWorkflowRun, graph.KindUser, triggerKey, graph.KindWorkflowRun, r.ID, nil)
}
