// Package graph defines the property-graph data model shared by every
// stage of the pipeline: the enumerated node and relationship kinds, their
// typed property tables, and the identity rules (key attribute and
// cross-repository shareability) of each node kind.
//
// This replaces a deep per-kind class hierarchy with a tagged variant
// (NodeKind/RelKind) plus small behavior tables: the loader generates
// queries from these tables instead of by virtual dispatch.
package graph

// NodeKind enumerates every node label the pipeline emits. The complete set
// exists so that index creation (loader step 1) covers every kind
// regardless of whether a given run happens to produce rows for it.
type NodeKind string

const (
	KindProject                   NodeKind = "Project"
	KindUser                      NodeKind = "User"
	KindOrganization              NodeKind = "Organization"
	KindLabel                     NodeKind = "Label"
	KindTopic                     NodeKind = "Topic"
	KindLanguage                  NodeKind = "Language"
	KindLicense                   NodeKind = "License"
	KindDependency                NodeKind = "Dependency"
	KindMilestone                 NodeKind = "Milestone"
	KindRelease                   NodeKind = "Release"
	KindBranch                    NodeKind = "Branch"
	KindCommit                    NodeKind = "Commit"
	KindFile                      NodeKind = "File"
	KindFileAction                NodeKind = "FileAction"
	KindIssue                     NodeKind = "Issue"
	KindDiscussion                NodeKind = "Discussion"
	KindDiscussionComment         NodeKind = "DiscussionComment"
	KindPullRequest               NodeKind = "PullRequest"
	KindPullRequestEvent          NodeKind = "PullRequestEvent"
	KindPullRequestReview         NodeKind = "PullRequestReview"
	KindPullRequestReviewComment  NodeKind = "PullRequestReviewComment"
	KindPullRequestFile           NodeKind = "PullRequestFile"
	KindWorkflow                  NodeKind = "Workflow"
	KindWorkflowRun               NodeKind = "WorkflowRun"
	KindProjectIssueMonth         NodeKind = "ProjectIssueMonth"
	KindProjectPullRequestMonth   NodeKind = "ProjectPullRequestMonth"
	KindProjectCommitMonth        NodeKind = "ProjectCommitMonth"
)

// AllNodeKinds lists every node kind, used by the loader to create indexes
// even for kinds this run produced zero rows for.
var AllNodeKinds = []NodeKind{
	KindProject, KindUser, KindOrganization, KindLabel, KindTopic, KindLanguage,
	KindLicense, KindDependency, KindMilestone, KindRelease, KindBranch, KindCommit,
	KindFile, KindFileAction, KindIssue, KindDiscussion, KindDiscussionComment,
	KindPullRequest, KindPullRequestEvent, KindPullRequestReview, KindPullRequestReviewComment,
	KindPullRequestFile, KindWorkflow, KindWorkflowRun, KindProjectIssueMonth,
	KindProjectPullRequestMonth, KindProjectCommitMonth,
}

// RelKind enumerates every relationship type the pipeline emits, going
// beyond a "representative, non-exhaustive" prose list to the complete
// set actually referenced by the processors.
type RelKind string

const (
	RelOwns                      RelKind = "OWNS"
	RelHasLicense                RelKind = "HAS_LICENSE"
	RelHasTopic                  RelKind = "HAS_TOPIC"
	RelHasLanguage               RelKind = "HAS_LANGUAGE"
	RelHasDependency              RelKind = "HAS_DEPENDENCY"
	RelHasLabel                  RelKind = "HAS_LABEL"
	RelHasBranch                 RelKind = "HAS_BRANCH"
	RelHasRelease                RelKind = "HAS_RELEASE"
	RelHasMilestone              RelKind = "HAS_MILESTONE"
	RelHasWorkflow               RelKind = "HAS_WORKFLOW"
	RelHasDiscussion             RelKind = "HAS_DISCUSSION"
	RelHasCommitMonth            RelKind = "HAS_COMMIT_MONTH"
	RelHasIssueMonth             RelKind = "HAS_ISSUE_MONTH"
	RelHasPullRequestMonth       RelKind = "HAS_PULL_REQUEST_MONTH"
	RelCommitInMonth             RelKind = "COMMIT_IN_MONTH"
	RelIssueInMonth              RelKind = "ISSUE_IN_MONTH"
	RelPullRequestInMonth        RelKind = "PULL_REQUEST_IN_MONTH"
	RelParentOf                  RelKind = "PARENT_OF"
	RelAuthorOf                  RelKind = "AUTHOR_OF"
	RelCommitterOf               RelKind = "COMMITTER_OF"
	RelCommentsOnCommit          RelKind = "COMMENTS_ON_COMMIT"
	RelPerformsFileAction        RelKind = "PERFORMS_FILE_ACTION"
	RelFileBeforeAction          RelKind = "FILE_BEFORE_ACTION"
	RelFileAfterAction           RelKind = "FILE_AFTER_ACTION"
	RelHasHeadCommit             RelKind = "HAS_HEAD_COMMIT"
	RelContainsCommit            RelKind = "CONTAINS_COMMIT"
	RelCreates                   RelKind = "CREATES"
	RelAssignedTo                RelKind = "ASSIGNED_TO"
	RelCloses                    RelKind = "CLOSES"
	RelCommentsOn                RelKind = "COMMENTS_ON"
	RelRequires                  RelKind = "REQUIRES"
	RelHasEvent                  RelKind = "HAS_EVENT"
	RelLinksCommit               RelKind = "LINKS_COMMIT"
	RelTriggers                  RelKind = "TRIGGERS"
	RelActorOf                   RelKind = "ACTOR_OF"
	RelSourceBranch              RelKind = "SOURCE_BRANCH"
	RelTargetBranch              RelKind = "TARGET_BRANCH"
	RelBaseCommit                RelKind = "BASE_COMMIT"
	RelHeadCommit                RelKind = "HEAD_COMMIT"
	RelHasReview                 RelKind = "HAS_REVIEW"
	RelReviewOfCommit            RelKind = "REVIEW_OF_COMMIT"
	RelHasReviewComment          RelKind = "HAS_REVIEW_COMMENT"
	RelReviewCommentOfCommit     RelKind = "REVIEW_COMMENT_OF_COMMIT"
	RelReviewCommentOfOrigCommit RelKind = "REVIEW_COMMENT_OF_ORIGINAL_COMMIT"
	RelReplyTo                   RelKind = "REPLY_TO"
	RelHasFile                   RelKind = "HAS_FILE"
	RelFileAfterMerge            RelKind = "FILE_AFTER_MERGE"
	RelHasComment                RelKind = "HAS_COMMENT"
	RelHasReply                  RelKind = "HAS_REPLY"
	RelAnswersDiscussion         RelKind = "ANSWERS_DISCUSSION"
	RelHasWorkflowRun            RelKind = "HAS_WORKFLOW_RUN"
	RelWorkflowRunOfCommit       RelKind = "WORKFLOW_RUN_OF_COMMIT"
	RelCreatesWorkflowRun        RelKind = "CREATES_WORKFLOW_RUN"
	RelTriggersWorkflowRun       RelKind = "TRIGGERS_WORKFLOW_RUN"
	RelStars                     RelKind = "STARS"
	RelWatches                   RelKind = "WATCHES"
	RelLinksIssue                RelKind = "LINKS_ISSUE"
	RelLinksPullRequest          RelKind = "LINKS_PULL_REQUEST"
	RelConvertsToDiscussion      RelKind = "CONVERTS_TO_DISCUSSION"
)

// AllRelKinds lists every relationship kind. The loader creates no
// relationship indexes from it.
var AllRelKinds = []RelKind{
	RelOwns, RelHasLicense, RelHasTopic, RelHasLanguage, RelHasDependency, RelHasLabel,
	RelHasBranch, RelHasRelease, RelHasMilestone, RelHasWorkflow, RelHasDiscussion,
	RelHasCommitMonth, RelHasIssueMonth, RelHasPullRequestMonth, RelCommitInMonth,
	RelIssueInMonth, RelPullRequestInMonth, RelParentOf, RelAuthorOf, RelCommitterOf,
	RelCommentsOnCommit, RelPerformsFileAction, RelFileBeforeAction, RelFileAfterAction,
	RelHasHeadCommit, RelContainsCommit, RelCreates, RelAssignedTo, RelCloses, RelCommentsOn,
	RelRequires, RelHasEvent, RelLinksCommit, RelTriggers, RelActorOf, RelSourceBranch,
	RelTargetBranch, RelBaseCommit, RelHeadCommit, RelHasReview, RelReviewOfCommit,
	RelHasReviewComment, RelReviewCommentOfCommit, RelReviewCommentOfOrigCommit, RelReplyTo,
	RelHasFile, RelFileAfterMerge, RelHasComment, RelHasReply, RelAnswersDiscussion,
	RelHasWorkflowRun, RelWorkflowRunOfCommit, RelCreatesWorkflowRun, RelTriggersWorkflowRun,
	RelStars, RelWatches, RelLinksIssue, RelLinksPullRequest, RelConvertsToDiscussion,
}

// PropertyType is one of the five coercible scalar types a property value
// can be declared as.
type PropertyType int

const (
	TypeString PropertyType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDatetime
)

// KeyName returns the designated key attribute for a node kind, defaulting
// to "id" for every kind that doesn't override it.
func KeyName(kind NodeKind) string {
	switch kind {
	case KindOrganization:
		return "orgId"
	case KindLanguage:
		return "name"
	case KindLicense:
		return "spdxId"
	case KindDependency:
		return "nameAndVersion"
	case KindFile:
		return "fileId"
	case KindFileAction:
		return "fileActionId"
	case KindCommit:
		return "hash"
	default:
		return "id"
	}
}

// shareableKinds deduplicate across repositories via MERGE at load time.
var shareableKinds = map[NodeKind]bool{
	KindUser:         true,
	KindOrganization: true,
	KindLanguage:     true,
	KindLicense:      true,
	KindTopic:        true,
	KindDependency:   true,
	KindFile:         true,
}

// Shareable reports whether a node kind is one whose nodes are shared
// across repositories. Defaults to false. The Neo4j loader does not consult
// it: every node kind, shareable or not, is written with MERGE on its key.
func Shareable(kind NodeKind) bool {
	return shareableKinds[kind]
}

// PropertyTypes returns the declared type of every property on a node kind.
// Only properties present here are emitted to the CSV header / coerced at
// load time; anything else on the incoming document is dropped.
func PropertyTypes(kind NodeKind) map[string]PropertyType {
	if t, ok := nodeProperties[kind]; ok {
		return t
	}
	return map[string]PropertyType{}
}

var nodeProperties = map[NodeKind]map[string]PropertyType{
	KindProject: {
		"id": TypeString, "url": TypeString, "name": TypeString, "visibility": TypeString,
		"isArchived": TypeBoolean, "diskUsage": TypeInteger, "flags": TypeString,
	},
	KindUser: {"id": TypeString, "login": TypeString, "name": TypeString, "email": TypeString},
	KindOrganization: {
		"orgId": TypeString, "orgLogin": TypeString, "orgName": TypeString, "emails": TypeString,
	},
	KindLabel:    {"id": TypeString, "name": TypeString},
	KindTopic:    {"id": TypeString, "name": TypeString},
	KindLanguage: {"name": TypeString},
	KindLicense:  {"spdxId": TypeString},
	KindDependency: {
		"nameAndVersion": TypeString, "name": TypeString, "versionInfo": TypeString,
		"licenseDeclared": TypeString, "dev": TypeBoolean,
	},
	KindMilestone: {
		"id": TypeString, "number": TypeInteger, "title": TypeString, "dueOn": TypeDatetime,
		"closedAt": TypeDatetime, "progressPercentage": TypeFloat, "state": TypeString,
	},
	KindRelease: {"id": TypeString, "name": TypeString, "publishedAt": TypeDatetime},
	KindBranch:  {"id": TypeString, "name": TypeString},
	KindCommit:  {"hash": TypeString, "message": TypeString, "merge": TypeBoolean},
	KindFile: {
		"fileId": TypeString, "mimeType": TypeString, "path": TypeString,
		"fileSha": TypeString, "fileSize": TypeInteger,
	},
	KindFileAction: {
		"fileActionId": TypeString, "changeType": TypeString, "copied": TypeBoolean,
		"renamed": TypeBoolean, "new": TypeBoolean, "deleted": TypeBoolean,
		"diff": TypeString, "addedLines": TypeInteger, "deletedLines": TypeInteger,
	},
	KindIssue: {
		"id": TypeString, "number": TypeInteger, "title": TypeString, "body": TypeString,
		"state": TypeString, "convertedToDiscussion": TypeBoolean,
	},
	KindDiscussion: {
		"id": TypeString, "number": TypeInteger, "title": TypeString, "closed": TypeBoolean,
		"closedAt": TypeDatetime, "upvoteCount": TypeInteger, "body": TypeString,
		"categoryName": TypeString,
	},
	KindDiscussionComment: {"id": TypeString, "body": TypeString, "isAnswer": TypeBoolean},
	KindPullRequest: {
		"id": TypeString, "number": TypeInteger, "title": TypeString, "body": TypeString,
		"state": TypeString, "isDraft": TypeBoolean, "locked": TypeBoolean,
		"baseRef": TypeString, "headRef": TypeString,
	},
	KindPullRequestEvent: {"id": TypeString, "__typename": TypeString},
	KindPullRequestReview: {
		"id": TypeString, "state": TypeString, "body": TypeString,
		"submittedAt": TypeDatetime, "commitHash": TypeString,
	},
	KindPullRequestReviewComment: {
		"id": TypeString, "body": TypeString, "diffHunk": TypeString, "path": TypeString,
		"line": TypeInteger, "originalLine": TypeInteger, "commitHash": TypeString,
		"originalCommitHash": TypeString, "replyToId": TypeString,
	},
	KindPullRequestFile: {
		"id": TypeString, "sha": TypeString, "path": TypeString, "changeType": TypeString,
		"additions": TypeInteger, "deletions": TypeInteger, "patch": TypeString,
	},
	KindWorkflow: {"id": TypeString, "title": TypeString, "configPath": TypeString, "state": TypeString},
	KindWorkflowRun: {
		"id": TypeString, "status": TypeString, "conclusion": TypeString, "attempts": TypeInteger,
	},
	KindProjectIssueMonth:       {"id": TypeString, "year": TypeInteger, "month": TypeInteger},
	KindProjectPullRequestMonth: {"id": TypeString, "year": TypeInteger, "month": TypeInteger},
	KindProjectCommitMonth:      {"id": TypeString, "year": TypeInteger, "month": TypeInteger},
}
