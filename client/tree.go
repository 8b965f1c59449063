package client

import (
	"context"
	"sort"

	"github.com/vaintrub/hierarchy-go/models"
)

// TreeNode is a hierarchy node with its children attached.
type TreeNode struct {
	Node     models.HierarchyNode
	Children []*TreeNode // Pointers for proper nesting
}

// Tree fetches the root and every other node and assembles them into a
// forest. The first element is the root when one exists; nodes whose parent
// is unknown follow it at the top level.
func (a *Adapter) Tree(ctx context.Context) ([]*TreeNode, error) {
	root, err := a.GetRoot(ctx)
	if err != nil {
		return nil, err
	}
	nodes, err := a.GetAllNonRootNodes(ctx)
	if err != nil {
		return nil, err
	}
	if root != nil {
		nodes = append([]models.HierarchyNode{*root}, nodes...)
	}
	return BuildTree(nodes), nil
}

// BuildTree links nodes to their parents by ParentID, falling back to
// ParentShortCode. Children are ordered by name. Every input node appears
// exactly once: nodes with an unknown parent, and one node of each parent
// cycle, are placed at the top level.
func BuildTree(nodes []models.HierarchyNode) []*TreeNode {
	byID := make(map[string]*TreeNode, len(nodes))
	byShortCode := make(map[string]*TreeNode, len(nodes))
	all := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		tn := &TreeNode{Node: n}
		all = append(all, tn)
		if n.ID != "" {
			byID[n.ID] = tn
		}
		if n.ShortCode != "" {
			byShortCode[n.ShortCode] = tn
		}
	}

	var roots []*TreeNode
	parents := make(map[*TreeNode]*TreeNode, len(all))
	for _, tn := range all {
		parent := byID[tn.Node.ParentID]
		if parent == nil && tn.Node.ParentShortCode != "" {
			parent = byShortCode[tn.Node.ParentShortCode]
		}
		if parent == nil || parent == tn {
			roots = append(roots, tn)
			continue
		}
		parent.Children = append(parent.Children, tn)
		parents[tn] = parent
	}

	// Nodes still unreachable from roots sit in or below a parent cycle.
	// Walk up to the first repeated ancestor, which lies on the cycle, cut
	// its parent edge and promote it to the top level.
	visited := make(map[*TreeNode]bool, len(all))
	for _, tn := range roots {
		markReachable(tn, visited)
	}
	for _, tn := range all {
		if visited[tn] {
			continue
		}
		cut := tn
		for seen := map[*TreeNode]bool{}; !seen[cut]; cut = parents[cut] {
			seen[cut] = true
		}
		parent := parents[cut]
		parent.Children = removeChild(parent.Children, cut)
		delete(parents, cut)
		roots = append(roots, cut)
		markReachable(cut, visited)
	}

	for _, tn := range all {
		sortByName(tn.Children)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		// root first, then by name
		if roots[i].Node.IsRoot() != roots[j].Node.IsRoot() {
			return roots[i].Node.IsRoot()
		}
		return roots[i].Node.Name < roots[j].Node.Name
	})
	return roots
}

func markReachable(tn *TreeNode, visited map[*TreeNode]bool) {
	if visited[tn] {
		return
	}
	visited[tn] = true
	for _, child := range tn.Children {
		markReachable(child, visited)
	}
}

func removeChild(children []*TreeNode, target *TreeNode) []*TreeNode {
	for i, c := range children {
		if c == target {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

func sortByName(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Node.Name < nodes[j].Node.Name
	})
}
