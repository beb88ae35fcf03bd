package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindOrganization, "orgId"},
		{KindLanguage, "name"},
		{KindLicense, "spdxId"},
		{KindDependency, "nameAndVersion"},
		{KindFile, "fileId"},
		{KindFileAction, "fileActionId"},
		{KindCommit, "hash"},
		{KindProject, "id"},
		{KindUser, "id"},
		{KindIssue, "id"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, KeyName(tt.kind))
		})
	}
}

func TestShareable(t *testing.T) {
	shareable := []NodeKind{KindUser, KindOrganization, KindLanguage, KindLicense, KindTopic, KindDependency, KindFile}
	for _, k := range shareable {
		assert.True(t, Shareable(k), "%s should be shareable", k)
	}

	notShareable := []NodeKind{KindProject, KindIssue, KindPullRequest, KindCommit, KindBranch}
	for _, k := range notShareable {
		assert.False(t, Shareable(k), "%s should not be shareable", k)
	}
}

func TestPropertyTypes_KnownKind(t *testing.T) {
	types := PropertyTypes(KindCommit)
	assert.Equal(t, TypeString, types["hash"])
	assert.Equal(t, TypeString, types["message"])
	assert.Equal(t, TypeBoolean, types["merge"])
}

func TestPropertyTypes_UnknownKindReturnsEmptyMap(t *testing.T) {
	types := PropertyTypes(NodeKind("NotARealKind"))
	assert.Empty(t, types)
}

func TestAllNodeKinds_HasNoDuplicates(t *testing.T) {
	seen := make(map[NodeKind]bool)
	for _, k := range AllNodeKinds {
		assert.False(t, seen[k], "duplicate node kind %s", k)
		seen[k] = true
	}
}

func TestAllRelKinds_HasNoDuplicates(t *testing.T) {
	seen := make(map[RelKind]bool)
	for _, k := range AllRelKinds {
		assert.False(t, seen[k], "duplicate relationship kind %s", k)
		seen[k] = true
	}
}
