package domain

import "fmt"

// FindComment returns the node with id, searching depth-first from roots.
// The pointer aliases the tree, so writes through it mutate the tree.
func FindComment(roots []CommentNode, id int64) *CommentNode {
	for i := range roots {
		if roots[i].Comment.ID == id {
			return &roots[i]
		}
		if found := FindComment(roots[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

func mustFind(roots []CommentNode, id int64) (*CommentNode, error) {
	node := FindComment(roots, id)
	if node == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrCommentNotFound, id)
	}
	return node, nil
}

// SetCollapsed sets the collapsed flag on the node with id.
func SetCollapsed(roots []CommentNode, id int64, collapsed bool) error {
	node, err := mustFind(roots, id)
	if err != nil {
		return err
	}
	node.Comment.Collapsed = collapsed
	return nil
}

// SetChildrenLoading sets the children-loading flag on the node with id.
func SetChildrenLoading(roots []CommentNode, id int64, loading bool) error {
	node, err := mustFind(roots, id)
	if err != nil {
		return err
	}
	node.Comment.ChildrenLoading = loading
	return nil
}

// AttachChildren replaces the children of the node with id, marking it
// loaded and no longer loading.
func AttachChildren(roots []CommentNode, id int64, children []CommentNode) error {
	node, err := mustFind(roots, id)
	if err != nil {
		return err
	}
	node.Children = children
	node.Comment.ChildrenLoaded = true
	node.Comment.ChildrenLoading = false
	return nil
}

// Flatten lists the visible comments in depth-first order. Descendants of
// a collapsed node are skipped.
func Flatten(roots []CommentNode) []Comment {
	var out []Comment
	var walk func([]CommentNode)
	walk = func(nodes []CommentNode) {
		for _, n := range nodes {
			out = append(out, n.Comment)
			if !n.Comment.Collapsed {
				walk(n.Children)
			}
		}
	}
	walk(roots)
	return out
}

// ExpandLoaded uncollapses every node shallower than maxDepth whose
// children are already attached.
func ExpandLoaded(roots []CommentNode, maxDepth int) {
	for i := range roots {
		c := &roots[i].Comment
		if c.Depth < maxDepth && c.ChildrenLoaded && len(roots[i].Children) > 0 {
			c.Collapsed = false
		}
		ExpandLoaded(roots[i].Children, maxDepth)
	}
}

// CountNodes returns the number of nodes in the tree.
func CountNodes(roots []CommentNode) int {
	n := len(roots)
	for _, r := range roots {
		n += CountNodes(r.Children)
	}
	return n
}
