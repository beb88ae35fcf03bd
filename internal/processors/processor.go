// Package processors turns one response document or enumeration item at a
// time into add-node/add-relationship calls against preprocessor storage.
// Processors compose hierarchically by explicit function call: a root
// processor builds its own node, then calls child processors, passing
// itself as the parent handle — there is no object graph, unlike a
// mutable parent-reference hierarchy.
package processors

import (
	"context"

	"github.com/octoharvest/octoharvest/internal/graph"
	"github.com/octoharvest/octoharvest/internal/storage"
)

// Processor transforms one document into graph writes against store,
// attaching relationships back to parent when non-nil (the repository
// Project itself has no parent).
type Processor interface {
	Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error
}

// Pipeline holds what every processor needs: the run's store and the
// project this run belongs to (most buckets and linking edges hang off
// the project, so it's threaded through rather than recomputed).
type Pipeline struct {
	Store     *storage.Store
	ProjectID string
}

// SentinelUserID is the stable key used for AUTHOR_OF/COMMITTER_OF edges
// when a commit's author or committer can't be resolved to a GitHub user.
const SentinelUserID = "sentinel-user"

// ensureSentinelUser writes the sentinel User node once per run; AddNode's
// dedup makes repeat calls free.
func (p *Pipeline) ensureSentinelUser() error {
	return p.Store.AddNode(graph.Node{
		Kind: graph.KindUser,
		Key:  SentinelUserID,
		Properties: map[string]interface{}{
			"id": SentinelUserID, "login": "ghost", "name": graph.SentinelString, "email": graph.SentinelString,
		},
	})
}

// resolveUser writes a User node keyed by id (or the sentinel, if id is
// empty) and returns its key.
func (p *Pipeline) resolveUser(id, login, name, email string) (string, error) {
	if id == "" {
		if err := p.ensureSentinelUser(); err != nil {
			return "", err
		}
		return SentinelUserID, nil
	}
	err := p.Store.AddNode(graph.Node{
		Kind: graph.KindUser,
		Key:  id,
		Properties: map[string]interface{}{
			"id": id, "login": login, "name": name, "email": email,
		},
	})
	return id, err
}

func (p *Pipeline) addEdge(kind graph.RelKind, fromKind graph.NodeKind, fromKey string, toKind graph.NodeKind, toKey string, props map[string]interface{}) error {
	if fromKey == "" || toKey == "" {
		return nil
	}
	return p.Store.AddEdge(graph.Edge{
		Kind: kind, FromKind: fromKind, FromKey: fromKey, ToKind: toKind, ToKey: toKey, Properties: props,
	})
}
