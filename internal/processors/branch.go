package processors

import (
	"context"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// BranchProcessor creates a Branch node and links it to the project, its
// head commit, and every commit reachable from it.
type BranchProcessor struct {
	Pipeline *Pipeline
}

// BranchDoc is one branch and the commit hashes reachable from its tip.
type BranchDoc struct {
	Name             string
	HeadCommitHash   string
	ReachableCommits []string
}

func (p *BranchProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(BranchDoc)
	branchID := p.Pipeline.Store.BranchID(p.Pipeline.ProjectID, d.Name)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindBranch, Key: branchID,
		Properties: map[string]interface{}{"id": branchID, "name": d.Name},
	}); err != nil {
		return err
	}
	if err := p.Pipeline.addEdge(graph.RelHasBranch, graph.KindProject, p.Pipeline.ProjectID, graph.KindBranch, branchID, nil); err != nil {
		return err
	}
	if d.HeadCommitHash != "" {
		if err := p.Pipeline.addEdge(graph.RelHasHeadCommit, graph.KindBranch, branchID, graph.KindCommit, d.HeadCommitHash, nil); err != nil {
			return err
		}
	}
	for _, hash := range d.ReachableCommits {
		if err := p.Pipeline.addEdge(graph.RelContainsCommit, graph.KindBranch, branchID, graph.KindCommit, hash, nil); err != nil {
			return err
		}
	}
	return nil
}
