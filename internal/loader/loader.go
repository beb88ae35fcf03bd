package loader

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// Loader drives the bulk-load sequence: create indexes, load nodes, load
// edges, run the cross-link pass, then hand back aggregate counts for
// the run ledger.
type Loader struct {
	backend graph.Backend
	log     *logrus.Entry
}

// New builds a Loader over an already-connected backend.
func New(backend graph.Backend, log *logrus.Entry) *Loader {
	return &Loader{backend: backend, log: log}
}

// Stats aggregates what a Load call wrote, surfaced to the run ledger.
type Stats struct {
	NodesWritten int
	EdgesWritten int
}

// Load runs steps 1-3: indexes, then nodes, then edges, in fixed 300-row
// transactions. The caller runs CrossLink (steps 4-5) separately once
// this repository's nodes and edges have been written, since cross-links
// may span files collected at different pipeline stages.
func (l *Loader) Load(nodes []graph.Node, edges []graph.Edge) (Stats, error) {
	if err := l.backend.EnsureIndexes(); err != nil {
		return Stats{}, fmt.Errorf("ensuring indexes: %w", err)
	}
	if err := l.backend.CreateNodes(nodes); err != nil {
		return Stats{}, fmt.Errorf("loading %d nodes: %w", len(nodes), err)
	}
	l.log.WithField("count", len(nodes)).Info("loaded nodes")

	if err := l.backend.CreateEdges(edges); err != nil {
		return Stats{}, fmt.Errorf("loading %d edges: %w", len(edges), err)
	}
	l.log.WithField("count", len(edges)).Info("loaded edges")

	return Stats{NodesWritten: len(nodes), EdgesWritten: len(edges)}, nil
}

// CrossLink runs steps 4 and 5 over an already-loaded repository: resolving
// text references into LINKS_ISSUE/LINKS_PULL_REQUEST edges, then linking
// each merged pull request's files to the files its merge commit touched.
func (l *Loader) CrossLink(repoProjectID string, refs []TextRef) error {
	linker := NewCrossLinker(l.backend)
	if err := linker.LinkTextReferences(repoProjectID, refs); err != nil {
		return fmt.Errorf("cross-link pass 1 (text references): %w", err)
	}
	if err := linker.LinkFileAfterMerge(repoProjectID); err != nil {
		return fmt.Errorf("cross-link pass 2 (file-after-merge): %w", err)
	}
	l.log.WithField("refs", len(refs)).Info("cross-linked references")
	return nil
}
