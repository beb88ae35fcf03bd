package processors

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"

	"github.com/octoharvest/octoharvest/internal/clone"
	"github.com/octoharvest/octoharvest/internal/graph"
)

// FileActionProcessor creates before/after File nodes and a fresh
// FileAction node linking the commit to the change. A File node is keyed
// by its blob SHA when the doc carries one (so identical blobs dedup
// globally across repositories), otherwise by a SHA-256 of its path. The
// repository worker fills neither BeforeSHA nor AfterSHA.
type FileActionProcessor struct {
	Pipeline *Pipeline
}

// FileActionDoc is one changed file within a commit.
type FileActionDoc struct {
	CommitHash   string
	Change       clone.FileChange
	BeforeSHA    string
	AfterSHA     string
	BeforeMIME   string
	AfterMIME    string
	BeforeSize   int
	AfterSize    int
}

func (p *FileActionProcessor) Process(ctx context.Context, parent *graph.NodeRef, doc interface{}) error {
	d := doc.(FileActionDoc)
	isNew := d.Change.ChangeType == "ADDED"
	isDeleted := d.Change.ChangeType == "DELETED"
	isRenamed := d.Change.ChangeType == "RENAMED"
	isCopied := d.Change.ChangeType == "COPIED"

	var beforeKey, afterKey string
	if !isNew {
		beforePath := d.Change.OldPath
		if beforePath == "" {
			beforePath = d.Change.Path
		}
		beforeKey = fileKey(beforePath, d.BeforeSHA)
		if err := p.Pipeline.Store.AddNode(graph.Node{
			Kind: graph.KindFile, Key: beforeKey,
			Properties: map[string]interface{}{
				"fileId": beforeKey, "mimeType": d.BeforeMIME, "path": beforePath,
				"fileSha": d.BeforeSHA, "fileSize": d.BeforeSize,
			},
		}); err != nil {
			return err
		}
	}
	if !isDeleted {
		afterKey = fileKey(d.Change.Path, d.AfterSHA)
		if err := p.Pipeline.Store.AddNode(graph.Node{
			Kind: graph.KindFile, Key: afterKey,
			Properties: map[string]interface{}{
				"fileId": afterKey, "mimeType": d.AfterMIME, "path": d.Change.Path,
				"fileSha": d.AfterSHA, "fileSize": d.AfterSize,
			},
		}); err != nil {
			return err
		}
	}

	actionID := uuid.NewString()
	if err := p.Pipeline.Store.AddNode(graph.Node{
		Kind: graph.KindFileAction, Key: actionID,
		Properties: map[string]interface{}{
			"fileActionId": actionID, "changeType": d.Change.ChangeType, "copied": isCopied,
			"renamed": isRenamed, "new": isNew, "deleted": isDeleted,
			"diff": d.Change.Diff, "addedLines": d.Change.AddedLines, "deletedLines": d.Change.DeletedLines,
		},
	}); err != nil {
		return err
	}

	if err := p.Pipeline.addEdge(graph.RelPerformsFileAction, graph.KindCommit, d.CommitHash, graph.KindFileAction, actionID, nil); err != nil {
		return err
	}
	if beforeKey != "" {
		if err := p.Pipeline.addEdge(graph.RelFileBeforeAction, graph.KindFileAction, actionID, graph.KindFile, beforeKey, nil); err != nil {
			return err
		}
	}
	if afterKey != "" {
		if err := p.Pipeline.addEdge(graph.RelFileAfterAction, graph.KindFileAction, actionID, graph.KindFile, afterKey, nil); err != nil {
			return err
		}
	}
	return nil
}

func fileKey(path, sha string) string {
	if sha != "" {
		return sha
	}
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("%x", sum)
}
