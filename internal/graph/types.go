package graph

// Node is the abstract, backend-agnostic representation of a graph node:
// a kind, the value of its designated key property, and its full property
// bag already coerced to Go types via PropertyTypes/Coerce. The loader is
// the only package that turns this into a Cypher MERGE.
type Node struct {
	Kind       NodeKind
	Key        string
	Properties map[string]interface{}
}

// Edge is the abstract representation of a directed relationship between
// two node keys of known kinds.
type Edge struct {
	Kind       RelKind
	FromKind   NodeKind
	FromKey    string
	ToKind     NodeKind
	ToKey      string
	Properties map[string]interface{}
}

// NodeRef is the handle a parent processor passes to its children so they
// can attach relationships back to the parent without holding a full
// object graph — a parent-node handle standing in for a mutable
// parent-reference hierarchy.
type NodeRef struct {
	Kind NodeKind
	Key  string
}

// Backend is implemented by a concrete graph database driver. The loader
// package owns the Neo4j implementation; this interface lets the rest of
// the pipeline depend only on the abstract shape.
type Backend interface {
	// CreateNodes merges or creates a batch of nodes in one transaction.
	CreateNodes(nodes []Node) error

	// CreateEdges merges or creates a batch of edges in one transaction.
	CreateEdges(edges []Edge) error

	// EnsureIndexes creates the key index of every node kind and an index
	// on each datetime-typed node property before bulk loading begins.
	// Relationship properties are not indexed.
	EnsureIndexes() error

	// Query runs an arbitrary Cypher statement, used by the cross-link pass.
	Query(cypher string, params map[string]interface{}) error

	// Close releases the underlying driver session pool.
	Close() error
}
