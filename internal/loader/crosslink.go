package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/octoharvest/octoharvest/internal/graph"
)

// referencePattern matches an issue/PR reference: an optional GitHub
// closing keyword immediately followed by "#<number>", or a bare
// "#<number>" on its own. The alternation (rather than an optional
// non-capturing group around the keyword) is what lets a verb attach to
// the number immediately following it while a later bare number in the
// same text still matches on its own, e.g. "resolves #123 and #456"
// yields action "resolves" for #123 and "NO_ACTION" for #456.
var referencePattern = regexp.MustCompile(
	`(?i)\b(fix|fixes|fixed|close|closes|closed|resolve|resolves|resolved)\b\s+#(\d+)|#(\d+)`,
)

// noActionSentinel is the action recorded for a bare "#<number>" reference
// with no closing keyword attached to it.
const noActionSentinel = "NO_ACTION"

// reference is one extracted "<verb>? #<number>" token.
type reference struct {
	Number int
	Action string
}

// extractReferences scans text for every issue/PR reference, deduplicated
// by number in first-seen order (a number referenced twice keeps whichever
// action its first occurrence carried).
func extractReferences(text string) []reference {
	seen := make(map[int]bool)
	var out []reference
	for _, m := range referencePattern.FindAllStringSubmatch(text, -1) {
		var n int
		var action string
		if m[2] != "" {
			num, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			n, action = num, strings.ToLower(m[1])
		} else {
			num, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			n, action = num, noActionSentinel
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, reference{Number: n, Action: action})
	}
	return out
}

// TextRef is one node carrying title/body/message text eligible for the
// cross-link scan: any node kind with a string-typed "title", "body", or
// "message" property, per graph.PropertyTypes.
type TextRef struct {
	Kind graph.NodeKind
	Key  string
	Text string
}

// CrossLinker runs the loader's final two passes over an already-loaded
// graph: resolving issue/PR references embedded in text, and linking each
// pull request's files to the files its merge commit actually touched.
type CrossLinker struct {
	backend graph.Backend
}

// NewCrossLinker builds a cross-linker over an already-loaded graph.
func NewCrossLinker(backend graph.Backend) *CrossLinker {
	return &CrossLinker{backend: backend}
}

// LinkTextReferences is cross-link pass 1: for every TextRef, extract its
// issue/PR references and attempt a LINKS_ISSUE or LINKS_PULL_REQUEST edge
// to whichever of Issue/PullRequest in this project carries that number.
// A number matching neither yields no edge at all, per the "unmatched
// numbers are silently skipped" rule; a number matching both is linked to
// both (GitHub numbers issues and PRs from the same counter, but a repo's
// own data can still collide across forks/imports).
func (c *CrossLinker) LinkTextReferences(repoProjectID string, refs []TextRef) error {
	for _, ref := range refs {
		for _, r := range extractReferences(ref.Text) {
			cypher := fmt.Sprintf(`
MATCH (src:%s {%s: $srcKey})
OPTIONAL MATCH (:%s {id: $repoId})-[:%s]->(:%s)-[:%s]->(i:%s {number: $number})
OPTIONAL MATCH (:%s {id: $repoId})-[:%s]->(:%s)-[:%s]->(pr:%s {number: $number})
FOREACH (_ IN CASE WHEN i IS NOT NULL THEN [1] ELSE [] END |
  MERGE (src)-[rel1:%s]->(i) SET rel1.action = $action)
FOREACH (_ IN CASE WHEN pr IS NOT NULL THEN [1] ELSE [] END |
  MERGE (src)-[rel2:%s]->(pr) SET rel2.action = $action)
`,
				ref.Kind, graph.KeyName(ref.Kind),
				graph.KindProject, graph.RelHasIssueMonth, graph.KindProjectIssueMonth, graph.RelIssueInMonth, graph.KindIssue,
				graph.KindProject, graph.RelHasPullRequestMonth, graph.KindProjectPullRequestMonth, graph.RelPullRequestInMonth, graph.KindPullRequest,
				graph.RelLinksIssue, graph.RelLinksPullRequest,
			)
			params := map[string]interface{}{
				"srcKey": ref.Key, "repoId": repoProjectID, "number": r.Number, "action": r.Action,
			}
			if err := c.backend.Query(cypher, params); err != nil {
				return fmt.Errorf("linking %s %s to #%d: %w", ref.Kind, ref.Key, r.Number, err)
			}
		}
	}
	return nil
}

// mergedEventTypeName is the __typename value LinkFileAfterMerge looks
// for on a PullRequestEvent to find the commit a PR's merge produced.
const mergedEventTypeName = "MergedEvent"

// LinkFileAfterMerge is cross-link pass 2: for every pull request in this
// project with a MergedEvent, follow its commit's file actions and link
// each PullRequestFile to the File reached through the action whose path
// matches, via a single declarative traversal rather than Go-side joins.
func (c *CrossLinker) LinkFileAfterMerge(repoProjectID string) error {
	cypher := fmt.Sprintf(`
MATCH (:%s {id: $repoId})-[:%s]->(:%s)-[:%s]->(pr:%s)
MATCH (pr)-[:%s]->(:%s {__typename: $mergedEventType})-[:%s]->(c:%s)
MATCH (c)-[:%s]->(:%s)-[:%s]->(f:%s)
MATCH (pr)-[:%s]->(prf:%s {path: f.path})
MERGE (prf)-[:%s]->(f)
`,
		graph.KindProject, graph.RelHasPullRequestMonth, graph.KindProjectPullRequestMonth, graph.RelPullRequestInMonth, graph.KindPullRequest,
		graph.RelHasEvent, graph.KindPullRequestEvent, graph.RelLinksCommit, graph.KindCommit,
		graph.RelPerformsFileAction, graph.KindFileAction, graph.RelFileAfterAction, graph.KindFile,
		graph.RelHasFile, graph.KindPullRequestFile,
		graph.RelFileAfterMerge,
	)
	params := map[string]interface{}{"repoId": repoProjectID, "mergedEventType": mergedEventTypeName}
	if err := c.backend.Query(cypher, params); err != nil {
		return fmt.Errorf("linking file-after-merge for project %s: %w", repoProjectID, err)
	}
	return nil
}
