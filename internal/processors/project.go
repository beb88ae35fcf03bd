package processors

import (
	"context"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// ProjectDoc is the repository-level document the Project processor
// consumes: the GraphQL repository root plus the fields its linked
// sub-resources need.
type ProjectDoc struct {
	ID         string
	URL        string
	Name       string
	Visibility string
	IsArchived bool
	DiskUsage  int

	OwnerIsOrg  bool
	OwnerID     string
	OwnerLogin  string
	OwnerName   string
	OwnerEmail  string

	LicenseSPDXID string
	Topics        []string
	Languages     []string
}

// ProjectProcessor creates the Project node and resolves its owner,
// license, topics, and languages. It has no parent: the Project is the
// root of every other node this run produces.
type ProjectProcessor struct {
	Pipeline *Pipeline
}

func (p *ProjectProcessor) Process(ctx context.Context, _ *graph.NodeRef, doc interface{}) error {
	d := doc.(ProjectDoc)

	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindProject,
		Key:  d.ID,
		Properties: map[string]interface{}{
			"id": d.ID, "url": d.URL, "name": d.Name, "visibility": d.Visibility,
			"isArchived": d.IsArchived, "diskUsage": d.DiskUsage, "flags": "",
		},
	}); err != nil {
		return err
	}

	if err := p.processOwner(d); err != nil {
		return err
	}
	if err := p.processLicense(d); err != nil {
		return err
	}
	if err := p.processTopics(d); err != nil {
		return err
	}
	return p.processLanguages(d)
}

func (p *ProjectProcessor) processOwner(d ProjectDoc) error {
	if d.OwnerID == "" {
		return nil
	}
	if d.OwnerIsOrg {
		if err := p.Pipeline.Store.AddNode(graph.Node{
			Kind: graph.KindOrganization,
			Key:  d.OwnerID,
			Properties: map[string]interface{}{
				"orgId": d.OwnerID, "orgLogin": d.OwnerLogin, "orgName": d.OwnerName, "emails": d.OwnerEmail,
			},
		}); err != nil {
			return err
		}
		return p.Pipeline.addEdge(graph.RelOwns, graph.KindOrganization, d.OwnerID, graph.KindProject, d.ID, nil)
	}

	ownerID, err := p.Pipeline.resolveUser(d.OwnerID, d.OwnerLogin, d.OwnerName, d.OwnerEmail)
	if err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelOwns, graph.KindUser, ownerID, graph.KindProject, d.ID, nil)
}

func (p *ProjectProcessor) processLicense(d ProjectDoc) error {
	if d.LicenseSPDXID == "" {
		return nil
	}
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind:       graph.KindLicense,
		Key:        d.LicenseSPDXID,
		Properties: map[string]interface{}{"spdxId": d.LicenseSPDXID},
	}); err != nil {
		return err
	}
	return p.Pipeline.addEdge(graph.RelHasLicense, graph.KindProject, d.ID, graph.KindLicense, d.LicenseSPDXID, nil)
}

func (p *ProjectProcessor) processTopics(d ProjectDoc) error {
	for _, topic := range d.Topics {
		if topic == "" {
			continue
		}
		if err := p.Pipeline.Store.AddNode(graph.Node{
			Kind: graph.KindTopic, Key: topic,
			Properties: map[string]interface{}{"id": topic, "name": topic},
		}); err != nil {
			return err
		}
		if err := p.Pipeline.addEdge(graph.RelHasTopic, graph.KindProject, d.ID, graph.KindTopic, topic, nil); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProjectProcessor) processLanguages(d ProjectDoc) error {
	for _, lang := range d.Languages {
		if lang == "" {
			continue
		}
		if err := p.Pipeline.Store.AddNode(graph.Node{
			Kind: graph.KindLanguage, Key: lang,
			Properties: map[string]interface{}{"name": lang},
		}); err != nil {
			return err
		}
		if err := p.Pipeline.addEdge(graph.RelHasLanguage, graph.KindProject, d.ID, graph.KindLanguage, lang, nil); err != nil {
			return err
		}
	}
	return nil
}
