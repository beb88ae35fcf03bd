package loader

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// Neo4jBackend implements graph.Backend against a real Neo4j instance using
// the official driver's context-aware ExecuteQuery API and UNWIND-batched
// writes, one transaction per batchSize-row chunk.
type Neo4jBackend struct {
	ctx      context.Context
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jBackend dials uri and verifies connectivity before returning.
func NewNeo4jBackend(ctx context.Context, uri, username, password, database string) (*Neo4jBackend, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", uri, err)
	}
	return &Neo4jBackend{ctx: ctx, driver: driver, database: database}, nil
}

// EnsureIndexes creates a uniqueness constraint (which implies an index) on
// the key property of every node kind, plus a plain index on every
// datetime-typed property graph.PropertyTypes declares for that kind.
// Relationship properties are not indexed. Run once at the start of
// loading, before any batch insert (loader step 1).
func (b *Neo4jBackend) EnsureIndexes() error {
	for _, kind := range graph.AllNodeKinds {
		label := string(kind)
		key := graph.KeyName(kind)
		if !isValidIdentifier(label) || !isValidIdentifier(key) {
			continue
		}
		stmt := fmt.Sprintf(
			"CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			label, key,
		)
		if _, err := neo4j.ExecuteQuery(b.ctx, b.driver, stmt, nil,
			neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(b.database)); err != nil {
			return fmt.Errorf("creating constraint for %s: %w", label, err)
		}
		for prop, pt := range graph.PropertyTypes(kind) {
			if pt != graph.TypeDatetime || !isValidIdentifier(prop) {
				continue
			}
			stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS FOR (n:%s) ON (n.%s)", label, prop)
			if _, err := neo4j.ExecuteQuery(b.ctx, b.driver, stmt, nil,
				neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(b.database)); err != nil {
				return fmt.Errorf("creating index on %s.%s: %w", label, prop, err)
			}
		}
	}
	return nil
}

// CreateNodes merges a batch of same-kind nodes per chunk, in fixed
// batchSize-row transactions.
func (b *Neo4jBackend) CreateNodes(nodes []graph.Node) error {
	byKind := make(map[graph.NodeKind][]graph.Node)
	for _, n := range nodes {
		byKind[n.Kind] = append(byKind[n.Kind], n)
	}
	for kind, kindNodes := range byKind {
		label := sanitizeLabel(string(kind))
		keyName := graph.KeyName(kind)
		stmt, err := buildUnwindMergeNodes(label, keyName)
		if err != nil {
			return err
		}
		for _, batch := range chunk(kindNodes) {
			rows := make([]map[string]any, len(batch))
			for i, n := range batch {
				rows[i] = map[string]any{"key": n.Key, "props": n.Properties}
			}
			if _, err := neo4j.ExecuteQuery(b.ctx, b.driver, stmt,
				map[string]any{"rows": rows},
				neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(b.database)); err != nil {
				return fmt.Errorf("merging %d %s nodes: %w", len(batch), label, err)
			}
		}
	}
	return nil
}

// CreateEdges merges a batch of same-kind edges per chunk.
func (b *Neo4jBackend) CreateEdges(edges []graph.Edge) error {
	type edgeGroup struct {
		relType, fromLabel, fromKey, toLabel, toKey string
	}
	byGroup := make(map[edgeGroup][]graph.Edge)
	for _, e := range edges {
		g := edgeGroup{
			relType:   sanitizeLabel(string(e.Kind)),
			fromLabel: sanitizeLabel(string(e.FromKind)),
			fromKey:   graph.KeyName(e.FromKind),
			toLabel:   sanitizeLabel(string(e.ToKind)),
			toKey:     graph.KeyName(e.ToKind),
		}
		byGroup[g] = append(byGroup[g], e)
	}
	for g, groupEdges := range byGroup {
		stmt, err := buildUnwindMergeEdges(g.relType, g.fromLabel, g.fromKey, g.toLabel, g.toKey)
		if err != nil {
			return err
		}
		for _, batch := range chunk(groupEdges) {
			rows := make([]map[string]any, len(batch))
			for i, e := range batch {
				rows[i] = map[string]any{"from": e.FromKey, "to": e.ToKey, "props": e.Properties}
			}
			if _, err := neo4j.ExecuteQuery(b.ctx, b.driver, stmt,
				map[string]any{"rows": rows},
				neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(b.database)); err != nil {
				return fmt.Errorf("merging %d %s edges: %w", len(batch), g.relType, err)
			}
		}
	}
	return nil
}

// Query runs an arbitrary Cypher statement, used by the cross-link pass to
// rewrite textual issue/PR references into relationships after every node
// and edge batch has been loaded.
func (b *Neo4jBackend) Query(cypher string, params map[string]interface{}) error {
	_, err := neo4j.ExecuteQuery(b.ctx, b.driver, cypher, params,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(b.database))
	return err
}

// Close shuts down the underlying driver's connection pool.
func (b *Neo4jBackend) Close() error {
	return b.driver.Close(b.ctx)
}
