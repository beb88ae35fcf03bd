package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain word", "Project", true},
		{"with underscore", "HAS_ISSUE_MONTH", true},
		{"leading underscore", "_private", true},
		{"empty", "", false},
		{"leading digit", "1Project", false},
		{"contains space", "Project Name", false},
		{"injection attempt", "Project}) DETACH DELETE n //", false},
		{"contains hyphen", "has-label", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidIdentifier(tt.in))
		})
	}
}

func TestBuildUnwindMergeNodes_RejectsInvalidIdentifiers(t *testing.T) {
	_, err := buildUnwindMergeNodes("Bad Label", "id")
	assert.Error(t, err)

	_, err = buildUnwindMergeNodes("Project", "bad key")
	assert.Error(t, err)

	cypher, err := buildUnwindMergeNodes("Project", "id")
	assert.NoError(t, err)
	assert.Contains(t, cypher, "MERGE (n:Project {id: row.key})")
}

func TestBuildUnwindMergeEdges_RejectsInvalidIdentifiers(t *testing.T) {
	_, err := buildUnwindMergeEdges("HAS_ISSUE", "Project", "id", "Issue; DROP", "id")
	assert.Error(t, err)

	cypher, err := buildUnwindMergeEdges("HAS_ISSUE", "Project", "id", "Issue", "id")
	assert.NoError(t, err)
	assert.Contains(t, cypher, "MERGE (from)-[r:HAS_ISSUE]->(to)")
}

func TestChunk(t *testing.T) {
	t.Run("empty input returns nil", func(t *testing.T) {
		assert.Nil(t, chunk([]int{}))
	})

	t.Run("fewer items than batch size returns one chunk", func(t *testing.T) {
		got := chunk([]int{1, 2, 3})
		assert.Equal(t, [][]int{{1, 2, 3}}, got)
	})

	t.Run("splits evenly on batch boundaries", func(t *testing.T) {
		items := make([]int, batchSize*2)
		for i := range items {
			items[i] = i
		}
		got := chunk(items)
		assert.Len(t, got, 2)
		assert.Len(t, got[0], batchSize)
		assert.Len(t, got[1], batchSize)
	})

	t.Run("final chunk holds the remainder", func(t *testing.T) {
		items := make([]int, batchSize+5)
		got := chunk(items)
		assert.Len(t, got, 2)
		assert.Len(t, got[0], batchSize)
		assert.Len(t, got[1], 5)
	})
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "ProjectIssueMonth", sanitizeLabel("ProjectIssueMonth"))
	assert.Equal(t, "Project_Name123", sanitizeLabel("Project_Name 123"))
	assert.Equal(t, "DROPTABLE", sanitizeLabel("DROP; TABLE"))
}
