// Package storage implements the preprocessor storage tier: an in-memory
// dedup layer plus a per-kind tabular file writer, namespaced by a hash of
// owner/name so concurrent workers never collide on disk.
package storage

import (
	"crypto/sha256"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// Store is one repository worker's preprocessor storage: in-memory dedup
// sets plus lazily-opened per-kind CSV writers under dir.
type Store struct {
	dir string

	mu          sync.Mutex
	seenNodes   map[graph.NodeKind]map[string]bool
	seenEdges   map[edgeDedupKey]bool
	nodeWriters map[graph.NodeKind]*kindWriter
	edgeWriters map[graph.RelKind]*kindWriter

	idCache map[string]string // memoized derived identifiers (branchId, time buckets)

	// nodes/edges retain the same deduplicated records the CSV files hold,
	// in memory, so the bulk loader can consume them directly instead of
	// re-parsing text columns back through the coercion tables. The CSV
	// files remain the durable per-kind artifact for this run.
	nodes []graph.Node
	edges []graph.Edge
}

type edgeDedupKey struct {
	kind    graph.RelKind
	fromKey string
	toKey   string
}

type kindWriter struct {
	file    *os.File
	writer  *csv.Writer
	columns []string
	wrote   bool
}

// New creates a Store writing under baseDir/<sha256(owner/name)[:16]>/.
func New(baseDir, ownerRepo string) (*Store, error) {
	hash := sha256.Sum256([]byte(ownerRepo))
	dir := filepath.Join(baseDir, fmt.Sprintf("%x", hash)[:16])

	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clearing stale intermediate dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating intermediate dir %s: %w", dir, err)
	}

	return &Store{
		dir:         dir,
		seenNodes:   make(map[graph.NodeKind]map[string]bool),
		seenEdges:   make(map[edgeDedupKey]bool),
		nodeWriters: make(map[graph.NodeKind]*kindWriter),
		edgeWriters: make(map[graph.RelKind]*kindWriter),
		idCache:     make(map[string]string),
	}, nil
}

// Dir returns the intermediate-file directory for this run.
func (s *Store) Dir() string { return s.dir }

// AddNode appends a node row if its key hasn't been seen yet this run.
// Idempotent: a duplicate call for the same kind+key is silently skipped.
func (s *Store) AddNode(n graph.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seenNodes[n.Kind] == nil {
		s.seenNodes[n.Kind] = make(map[string]bool)
	}
	if s.seenNodes[n.Kind][n.Key] {
		return nil
	}
	s.seenNodes[n.Kind][n.Key] = true
	s.nodes = append(s.nodes, n)

	w, err := s.nodeWriter(n.Kind, n.Properties)
	if err != nil {
		return err
	}
	return w.writeRow(n.Key, n.Properties)
}

// AddEdge appends a relationship row if its (kind, from, to) combination
// hasn't been seen yet this run.
func (s *Store) AddEdge(e graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeDedupKey{kind: e.Kind, fromKey: e.FromKey, toKey: e.ToKey}
	if s.seenEdges[key] {
		return nil
	}
	s.seenEdges[key] = true
	s.edges = append(s.edges, e)

	w, err := s.edgeWriter(e.Kind, e.Properties)
	if err != nil {
		return err
	}
	return w.writeEdgeRow(e.FromKey, e.ToKey, e.Properties)
}

// Nodes returns every deduplicated node added this run.
func (s *Store) Nodes() []graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns every deduplicated relationship added this run.
func (s *Store) Edges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Close flushes and closes every opened writer.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, w := range s.nodeWriters {
		if err := w.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, w := range s.edgeWriters {
		if err := w.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remove deletes the intermediate directory for this run, matching the
// worker's delete-before-and-after discipline.
func (s *Store) Remove() error {
	return os.RemoveAll(s.dir)
}

func (s *Store) nodeWriter(kind graph.NodeKind, sample map[string]interface{}) (*kindWriter, error) {
	if w, ok := s.nodeWriters[kind]; ok {
		return w, nil
	}
	w, err := newKindWriter(s.dir, "node_"+string(kind)+".csv", columnsFor(graph.KeyName(kind), sample))
	if err != nil {
		return nil, err
	}
	s.nodeWriters[kind] = w
	return w, nil
}

func (s *Store) edgeWriter(kind graph.RelKind, sample map[string]interface{}) (*kindWriter, error) {
	if w, ok := s.edgeWriters[kind]; ok {
		return w, nil
	}
	w, err := newKindWriter(s.dir, "rel_"+string(kind)+".csv", columnsFor("", sample))
	if err != nil {
		return nil, err
	}
	s.edgeWriters[kind] = w
	return w, nil
}

func columnsFor(keyColumn string, sample map[string]interface{}) []string {
	var cols []string
	if keyColumn != "" {
		cols = append(cols, keyColumn)
	} else {
		cols = append(cols, "source_id", "destination_id")
	}
	for k := range sample {
		cols = append(cols, k)
	}
	return cols
}

func newKindWriter(dir, filename string, columns []string) (*kindWriter, error) {
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filename, err)
	}
	return &kindWriter{file: f, writer: csv.NewWriter(f), columns: columns}, nil
}

func (w *kindWriter) writeRow(key string, props map[string]interface{}) error {
	if !w.wrote {
		if err := w.writer.Write(w.columns); err != nil {
			return err
		}
		w.wrote = true
	}
	row := make([]string, len(w.columns))
	row[0] = key
	for i, col := range w.columns[1:] {
		row[i+1] = fmt.Sprintf("%v", props[col])
	}
	if err := w.writer.Write(row); err != nil {
		return err
	}
	w.writer.Flush()
	return w.writer.Error()
}

func (w *kindWriter) writeEdgeRow(from, to string, props map[string]interface{}) error {
	if !w.wrote {
		if err := w.writer.Write(w.columns); err != nil {
			return err
		}
		w.wrote = true
	}
	row := make([]string, len(w.columns))
	row[0], row[1] = from, to
	for i, col := range w.columns[2:] {
		row[i+2] = fmt.Sprintf("%v", props[col])
	}
	if err := w.writer.Write(row); err != nil {
		return err
	}
	w.writer.Flush()
	return w.writer.Error()
}

func (w *kindWriter) close() error {
	w.writer.Flush()
	return w.file.Close()
}
