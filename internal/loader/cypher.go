// Package loader executes the abstract graph.Node/graph.Edge records
// produced by the processors against Neo4j: index creation, fixed-size
// batch transactions, and the final cross-link pass that rewrites textual
// issue/PR references into relationships.
package loader

import (
	"fmt"
	"regexp"
	"strings"
)

// batchSize is the fixed per-transaction row count. Unlike a per-label
// BatchConfig, this is a single constant applied uniformly to every node
// and relationship kind.
const batchSize = 300

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier reports whether s is safe to splice directly into a
// Cypher label or relationship type. Every label and relationship type
// used here originates from the fixed graph.NodeKind/graph.RelKind enums,
// never from untrusted input, but this check stays as the last line of
// defense against Cypher injection.
func isValidIdentifier(s string) bool {
	return s != "" && identifierPattern.MatchString(s)
}

// buildUnwindMergeNodes builds a single UNWIND statement that merges an
// entire batch of same-kind nodes by key and overwrites their properties.
func buildUnwindMergeNodes(label, keyName string) (string, error) {
	if !isValidIdentifier(label) {
		return "", fmt.Errorf("invalid node label %q", label)
	}
	if !isValidIdentifier(keyName) {
		return "", fmt.Errorf("invalid node key %q", keyName)
	}
	return fmt.Sprintf(
		`UNWIND $rows AS row
MERGE (n:%s {%s: row.key})
SET n += row.props`,
		label, keyName,
	), nil
}

// buildUnwindMergeEdges builds a single UNWIND statement that merges an
// entire batch of same-kind edges between two fixed node kinds.
func buildUnwindMergeEdges(relType, fromLabel, fromKey, toLabel, toKey string) (string, error) {
	for _, id := range []string{relType, fromLabel, fromKey, toLabel, toKey} {
		if !isValidIdentifier(id) {
			return "", fmt.Errorf("invalid identifier %q in edge batch", id)
		}
	}
	return fmt.Sprintf(
		`UNWIND $rows AS row
MATCH (from:%s {%s: row.from})
MATCH (to:%s {%s: row.to})
MERGE (from)-[r:%s]->(to)
SET r += row.props`,
		fromLabel, fromKey, toLabel, toKey, relType,
	), nil
}

// chunk splits items into batchSize-sized slices, the unit of a single
// Cypher transaction.
func chunk[T any](items []T) [][]T {
	if len(items) == 0 {
		return nil
	}
	var out [][]T
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

func sanitizeLabel(label string) string {
	var sb strings.Builder
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
