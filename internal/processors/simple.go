package processors

import (
	"github.com/octoharvest/octoharvest/internal/graph"
	"github.com/octoharvest/octoharvest/internal/model"
)

// SimpleLinkProcessor covers every subject that is just a node plus a
// single linking relationship to its parent: Dependency, Stargazer,
// Watcher, Release, Label (at the repository level, independent of any
// issue/PR that also references it).
type SimpleLinkProcessor struct {
	Pipeline *Pipeline
}

// DependencyDoc is one entry from a repository's dependency manifest.
type DependencyDoc struct {
	Name, Version, LicenseDeclared string
	Dev                            bool
}

func (p *SimpleLinkProcessor) Dependency(d DependencyDoc) error {
	key := d.Name + "@" + d.Version
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindDependency, Key: key,
		Properties: map[string]interface{}{
			"nameAndVersion": key, "name": d.Name, "versionInfo": d.Version,
			"licenseDeclared": d.LicenseDeclared, "dev": d.Dev,
		},
	}); err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelHasDependency, graph.KindProject, p.Pipeline.ProjectID, graph.KindDependency, key, nil)
}

func (p *SimpleLinkProcessor) Stargazer(s model.Stargazer) error {
	userID, err := p.Pipeline.resolveUser(s.ID, s.Login, "", "")
	if err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelStars, graph.KindUser, userID, graph.KindProject, p.Pipeline.ProjectID,
		map[string]interface{}{"starredAt": s.StarredAt})
}

func (p *SimpleLinkProcessor) Watcher(w model.Watcher) error {
	userID, err := p.Pipeline.resolveUser(w.ID, w.Login, "", "")
	if err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelWatches, graph.KindUser, userID, graph.KindProject, p.Pipeline.ProjectID, nil)
}

func (p *SimpleLinkProcessor) Release(r model.Release) error {
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindRelease, Key: r.ID,
		Properties: map[string]interface{}{"id": r.ID, "name": r.Name, "publishedAt": r.PublishedAt},
	}); err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelHasRelease, graph.KindProject, p.Pipeline.ProjectID, graph.KindRelease, r.ID, nil)
}

func (p *SimpleLinkProcessor) Label(l model.Label) error {
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindLabel, Key: l.ID,
		Properties: map[string]interface{}{"id": l.ID, "name": l.Name},
	}); err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelHasLabel, graph.KindProject, p.Pipeline.ProjectID, graph.KindLabel, l.ID, nil)
}
