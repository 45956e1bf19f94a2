package facade

import (
	"context"
	"strings"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/walk"
)

// TreeRequest walks a directory recursively, capped at MaxFilesScanned,
// and assembles the results into a hierarchy.
type TreeRequest struct {
	Root            string
	MaxDepth        int
	IncludeHidden   bool
	ExcludePatterns []string
	MaxFilesScanned int
	TimeoutMs       int64
}

// TreeNode is one node of the assembled hierarchy returned by Tree.
type TreeNode struct {
	Name     string
	Path     string
	Kind     walk.Kind
	Children []*TreeNode
}

// TreeResponse carries the root node plus the traversal summary.
type TreeResponse struct {
	Root    *TreeNode
	Summary walk.Summary
}

// Tree implements the tree facade.
func (c *Client) Tree(ctx context.Context, req TreeRequest) (TreeResponse, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Root)
	if ferr != nil {
		return TreeResponse{}, ferr
	}
	if ferr := requireDirectory(resolved.Canonical); ferr != nil {
		return TreeResponse{}, ferr
	}

	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	entries, summary, err := walk.Walk(sig, resolved.Canonical, walk.Options{
		IncludeHidden:   req.IncludeHidden,
		ExcludePatterns: req.ExcludePatterns,
		MaxDepth:        req.MaxDepth,
		MaxFilesScanned: req.MaxFilesScanned,
		MaxEntries:      walk.DefaultMaxEntries,
		WithStats:       false,
	})
	if err != nil {
		return TreeResponse{}, fserrors.FromOSError(req.Root, err)
	}

	root := assembleTree(resolved.Canonical, entries)
	return TreeResponse{Root: root, Summary: summary}, nil
}

// assembleTree builds a hierarchy from the flat entry list by splitting
// each RelativePath on "/" and threading nodes through a path->node index,
// creating synthetic intermediate directory nodes as needed.
func assembleTree(rootPath string, entries []walk.Entry) *TreeNode {
	root := &TreeNode{Name: rootPath, Path: rootPath, Kind: walk.KindDirectory}
	index := map[string]*TreeNode{"": root}

	for _, e := range entries {
		segments := strings.Split(e.RelativePath, "/")
		parentKey := ""
		for i, seg := range segments {
			key := strings.Join(segments[:i+1], "/")
			if node, ok := index[key]; ok {
				if i == len(segments)-1 {
					node.Kind = e.Kind
				}
				parentKey = key
				continue
			}
			kind := walk.KindDirectory
			if i == len(segments)-1 {
				kind = e.Kind
			}
			node := &TreeNode{Name: seg, Path: key, Kind: kind}
			index[parentKey].Children = append(index[parentKey].Children, node)
			index[key] = node
			parentKey = key
		}
	}

	return root
}
