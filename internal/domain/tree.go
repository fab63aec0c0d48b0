package domain

import "fmt"

// TreeNode is one entry in an ordered navigation or page-content hierarchy.
// Nesting is exactly one level deep: children never carry children of their
// own. Ordinals are derived from list position and recomputed after every
// structural change, never copied from a prior state.
type TreeNode struct {
	ID       string     `json:"id"`
	Ordinal  int        `json:"ordinal"`
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	IconName string     `json:"icon_name,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// Forest is the ordered list of top-level nodes. All editing operations are
// pure: they return a rebuilt forest and leave the input untouched.
type Forest []TreeNode

// NodeRef locates a node inside a forest. ParentID is empty for top-level
// nodes.
type NodeRef struct {
	Node     TreeNode
	ParentID string
	Index    int
}

// FindNode scans top-level nodes first, then each node's children. Node IDs
// are unique across the forest by construction.
func FindNode(forest Forest, nodeID string) (NodeRef, error) {
	for i, node := range forest {
		if node.ID == nodeID {
			return NodeRef{Node: node, Index: i}, nil
		}
	}
	for _, parent := range forest {
		for j, child := range parent.Children {
			if child.ID == nodeID {
				return NodeRef{Node: child, ParentID: parent.ID, Index: j}, nil
			}
		}
	}
	return NodeRef{}, ErrNotFound
}

// InsertTopLevel inserts node at the given index, or appends when at is -1.
// Any grandchildren on the inserted node's children are stripped to keep the
// one-level invariant.
func InsertTopLevel(forest Forest, node TreeNode, at int) (Forest, error) {
	out := cloneForest(forest)
	for i := range node.Children {
		node.Children[i].Children = nil
	}
	out, err := insertAt(out, node, at)
	if err != nil {
		return nil, err
	}
	return Renumber(out), nil
}

// InsertChild inserts node into the children of the top-level node parentID.
// The inserted node is stripped of any children it carried. Duplicate
// {name, path} detection is the caller's concern; see ChildCollides.
func InsertChild(forest Forest, parentID string, node TreeNode, at int) (Forest, error) {
	out := cloneForest(forest)
	idx := topLevelIndex(out, parentID)
	if idx < 0 {
		return nil, ErrParentNotFound
	}
	node.Children = nil
	children, err := insertAt(out[idx].Children, node, at)
	if err != nil {
		return nil, err
	}
	out[idx].Children = children
	return Renumber(out), nil
}

// ChildCollides reports whether parent already has a child matching node's
// name and path exactly.
func ChildCollides(parent TreeNode, node TreeNode) bool {
	for _, child := range parent.Children {
		if child.Name == node.Name && child.Path == node.Path {
			return true
		}
	}
	return false
}

// DeleteNode removes the node and, for a top-level node, its entire children
// list. Deleting an unknown id is a no-op.
func DeleteNode(forest Forest, nodeID string) Forest {
	out := cloneForest(forest)
	ref, err := FindNode(out, nodeID)
	if err != nil {
		return out
	}
	if ref.ParentID == "" {
		out = append(out[:ref.Index], out[ref.Index+1:]...)
	} else {
		idx := topLevelIndex(out, ref.ParentID)
		children := out[idx].Children
		out[idx].Children = append(children[:ref.Index], children[ref.Index+1:]...)
	}
	return Renumber(out)
}

// ReorderSiblings moves one element of a sibling list from one index to
// another, shifting the elements in between. containerID empty means the
// top-level list; otherwise it names the parent whose children are reordered.
// Out-of-range indices are rejected rather than clamped.
func ReorderSiblings(forest Forest, containerID string, from, to int) (Forest, error) {
	out := cloneForest(forest)
	var siblings []TreeNode
	parentIdx := -1
	if containerID == "" {
		siblings = out
	} else {
		parentIdx = topLevelIndex(out, containerID)
		if parentIdx < 0 {
			return nil, ErrParentNotFound
		}
		siblings = out[parentIdx].Children
	}
	if from < 0 || from >= len(siblings) || to < 0 || to >= len(siblings) {
		return nil, ErrInvalidIndex
	}
	if from == to {
		return out, nil
	}
	moved := siblings[from]
	siblings = append(siblings[:from], siblings[from+1:]...)
	siblings = append(siblings[:to], append([]TreeNode{moved}, siblings[to:]...)...)
	if parentIdx < 0 {
		out = siblings
	} else {
		out[parentIdx].Children = siblings
	}
	return Renumber(out), nil
}

// MoveToParent moves a node into the children of the top-level node
// newParentID. A moved top-level node leaves its children behind: they are
// promoted into its old slot, in order, before the node itself is re-homed
// as a childless entry of the destination. at is the destination index, -1
// for end.
func MoveToParent(forest Forest, nodeID, newParentID string, at int) (Forest, error) {
	if nodeID == newParentID {
		return nil, ErrSelfParenting
	}
	if topLevelIndex(forest, newParentID) < 0 {
		return nil, ErrParentNotFound
	}
	out := cloneForest(forest)
	ref, err := FindNode(out, nodeID)
	if err != nil {
		return nil, err
	}
	node := ref.Node
	if ref.ParentID == "" {
		promoted := make([]TreeNode, len(node.Children))
		copy(promoted, node.Children)
		rest := append([]TreeNode(nil), out[ref.Index+1:]...)
		out = append(out[:ref.Index], append(promoted, rest...)...)
	} else {
		idx := topLevelIndex(out, ref.ParentID)
		children := out[idx].Children
		out[idx].Children = append(children[:ref.Index], children[ref.Index+1:]...)
	}
	node.Children = nil
	destIdx := topLevelIndex(out, newParentID)
	if destIdx < 0 {
		return nil, ErrParentNotFound
	}
	children, err := insertAt(out[destIdx].Children, node, at)
	if err != nil {
		return nil, err
	}
	out[destIdx].Children = children
	return Renumber(out), nil
}

// PromoteToTopLevel removes a child from its parent and inserts it as a
// top-level node with an empty children list. Promoting a node that is
// already top-level returns the forest unchanged.
func PromoteToTopLevel(forest Forest, nodeID string, at int) (Forest, error) {
	out := cloneForest(forest)
	ref, err := FindNode(out, nodeID)
	if err != nil {
		return nil, err
	}
	if ref.ParentID == "" {
		return out, nil
	}
	idx := topLevelIndex(out, ref.ParentID)
	children := out[idx].Children
	out[idx].Children = append(children[:ref.Index], children[ref.Index+1:]...)
	node := ref.Node
	node.Children = nil
	out, err = insertAt(out, node, at)
	if err != nil {
		return nil, err
	}
	return Renumber(out), nil
}

// Renumber recomputes every ordinal from list position: (i+1)*10 for
// top-level nodes, parent ordinal + j + 1 for children. Deriving ordinals
// from final position is what keeps sibling ordinals collision-free.
func Renumber(forest Forest) Forest {
	for i := range forest {
		forest[i].Ordinal = (i + 1) * 10
		for j := range forest[i].Children {
			forest[i].Children[j].Ordinal = forest[i].Ordinal + j + 1
		}
	}
	return forest
}

// ValidateOrdinals checks that every sibling list carries strictly
// increasing, duplicate-free ordinals and that nesting stays one level deep.
func ValidateOrdinals(forest Forest) error {
	prev := 0
	for i, node := range forest {
		if i > 0 && node.Ordinal <= prev {
			return fmt.Errorf("%w: top-level ordinal %d at index %d not increasing", ErrInvalidInput, node.Ordinal, i)
		}
		prev = node.Ordinal
		childPrev := 0
		for j, child := range node.Children {
			if len(child.Children) > 0 {
				return fmt.Errorf("%w: node %q nests beyond one level", ErrInvalidInput, child.ID)
			}
			if j > 0 && child.Ordinal <= childPrev {
				return fmt.Errorf("%w: child ordinal %d under %q not increasing", ErrInvalidInput, child.Ordinal, node.ID)
			}
			childPrev = child.Ordinal
		}
	}
	return nil
}

func cloneForest(forest Forest) Forest {
	out := make(Forest, len(forest))
	for i, node := range forest {
		out[i] = node
		if node.Children != nil {
			out[i].Children = append([]TreeNode(nil), node.Children...)
		}
	}
	return out
}

func topLevelIndex(forest Forest, nodeID string) int {
	for i, node := range forest {
		if node.ID == nodeID {
			return i
		}
	}
	return -1
}

func insertAt(list []TreeNode, node TreeNode, at int) ([]TreeNode, error) {
	if at == -1 || at == len(list) {
		return append(list, node), nil
	}
	if at < 0 || at > len(list) {
		return nil, ErrInvalidIndex
	}
	rest := append([]TreeNode(nil), list[at:]...)
	return append(append(list[:at], node), rest...), nil
}
