package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sidebarFixture() Forest {
	return Renumber(Forest{
		{ID: "profile", Name: "Profile", Path: "/profile"},
		{ID: "course", Name: "Course", Path: "/course", Children: []TreeNode{
			{ID: "ielts", Name: "IELTS", Path: "/course/ielts"},
		}},
		{ID: "media", Name: "Media", Path: "/media", IconName: "image"},
	})
}

func TestRenumber_OrdinalsDerivedFromPosition(t *testing.T) {
	forest := sidebarFixture()

	assert.Equal(t, 10, forest[0].Ordinal)
	assert.Equal(t, 20, forest[1].Ordinal)
	assert.Equal(t, 30, forest[2].Ordinal)
	assert.Equal(t, 21, forest[1].Children[0].Ordinal)
}

func TestFindNode(t *testing.T) {
	forest := sidebarFixture()

	ref, err := FindNode(forest, "course")
	require.NoError(t, err)
	assert.Equal(t, "", ref.ParentID)
	assert.Equal(t, 1, ref.Index)

	ref, err = FindNode(forest, "ielts")
	require.NoError(t, err)
	assert.Equal(t, "course", ref.ParentID)
	assert.Equal(t, 0, ref.Index)

	_, err = FindNode(forest, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertTopLevel_AppendsByDefault(t *testing.T) {
	forest := sidebarFixture()

	out, err := InsertTopLevel(forest, TreeNode{ID: "batch", Name: "Batch", Path: "/batch"}, -1)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "batch", out[3].ID)
	assert.Equal(t, 40, out[3].Ordinal)
	assert.Len(t, forest, 3, "input forest must be untouched")
}

func TestInsertTopLevel_AtIndexShiftsAndRenumbers(t *testing.T) {
	forest := sidebarFixture()

	out, err := InsertTopLevel(forest, TreeNode{ID: "batch", Name: "Batch", Path: "/batch"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "batch", out[0].ID)
	assert.Equal(t, 10, out[0].Ordinal)
	assert.Equal(t, "profile", out[1].ID)
	assert.Equal(t, 20, out[1].Ordinal)
}

func TestInsertTopLevel_RejectsOutOfRangeIndex(t *testing.T) {
	forest := sidebarFixture()

	_, err := InsertTopLevel(forest, TreeNode{ID: "batch", Name: "Batch"}, 7)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestInsertChild_RenumbersParentChildren(t *testing.T) {
	forest := sidebarFixture()

	out, err := InsertChild(forest, "course", TreeNode{ID: "toefl", Name: "TOEFL", Path: "/course/toefl"}, 0)
	require.NoError(t, err)
	children := out[1].Children
	require.Len(t, children, 2)
	assert.Equal(t, "toefl", children[0].ID)
	assert.Equal(t, 21, children[0].Ordinal)
	assert.Equal(t, "ielts", children[1].ID)
	assert.Equal(t, 22, children[1].Ordinal)
}

func TestInsertChild_UnknownParent(t *testing.T) {
	_, err := InsertChild(sidebarFixture(), "ghost", TreeNode{ID: "x", Name: "X"}, -1)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestInsertChild_ChildCannotBeParent(t *testing.T) {
	// children are not valid parents; only top-level ids resolve
	_, err := InsertChild(sidebarFixture(), "ielts", TreeNode{ID: "x", Name: "X"}, -1)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestInsertChild_StripsGrandchildren(t *testing.T) {
	node := TreeNode{ID: "toefl", Name: "TOEFL", Children: []TreeNode{{ID: "deep", Name: "Deep"}}}

	out, err := InsertChild(sidebarFixture(), "course", node, -1)
	require.NoError(t, err)
	assert.Empty(t, out[1].Children[1].Children)
}

func TestChildCollides(t *testing.T) {
	forest := sidebarFixture()
	parent := forest[1]

	assert.True(t, ChildCollides(parent, TreeNode{Name: "IELTS", Path: "/course/ielts"}))
	assert.False(t, ChildCollides(parent, TreeNode{Name: "IELTS", Path: "/course/other"}))
}

func TestDeleteNode_TopLevelRemovesSubtree(t *testing.T) {
	forest := sidebarFixture()

	out := DeleteNode(forest, "course")
	require.Len(t, out, 2)
	assert.Equal(t, "profile", out[0].ID)
	assert.Equal(t, "media", out[1].ID)
	assert.Equal(t, 20, out[1].Ordinal)

	_, err := FindNode(out, "ielts")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNode_ChildRenumbersSiblings(t *testing.T) {
	forest := sidebarFixture()
	forest, err := InsertChild(forest, "course", TreeNode{ID: "toefl", Name: "TOEFL", Path: "/course/toefl"}, -1)
	require.NoError(t, err)

	out := DeleteNode(forest, "ielts")
	children := out[1].Children
	require.Len(t, children, 1)
	assert.Equal(t, "toefl", children[0].ID)
	assert.Equal(t, 21, children[0].Ordinal)
}

func TestDeleteNode_MissingIDIsNoop(t *testing.T) {
	forest := sidebarFixture()

	out := DeleteNode(forest, "ghost")
	assert.Equal(t, forest, out)
}

func TestFindDeleteFindYieldsNotFound(t *testing.T) {
	forest := sidebarFixture()

	_, err := FindNode(forest, "media")
	require.NoError(t, err)

	out := DeleteNode(forest, "media")
	_, err = FindNode(out, "media")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderSiblings_TopLevel(t *testing.T) {
	forest := sidebarFixture()

	out, err := ReorderSiblings(forest, "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "course", out[0].ID)
	assert.Equal(t, "media", out[1].ID)
	assert.Equal(t, "profile", out[2].ID)
	assert.Equal(t, []int{10, 20, 30}, []int{out[0].Ordinal, out[1].Ordinal, out[2].Ordinal})
}

func TestReorderSiblings_Children(t *testing.T) {
	forest := sidebarFixture()
	forest, err := InsertChild(forest, "course", TreeNode{ID: "toefl", Name: "TOEFL", Path: "/course/toefl"}, -1)
	require.NoError(t, err)

	out, err := ReorderSiblings(forest, "course", 1, 0)
	require.NoError(t, err)
	children := out[1].Children
	assert.Equal(t, "toefl", children[0].ID)
	assert.Equal(t, "ielts", children[1].ID)
	assert.Equal(t, 21, children[0].Ordinal)
	assert.Equal(t, 22, children[1].Ordinal)
}

func TestReorderSiblings_SameIndexIsStructuralNoop(t *testing.T) {
	forest := sidebarFixture()

	out, err := ReorderSiblings(forest, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, forest, out)
}

func TestReorderSiblings_OutOfRangeRejected(t *testing.T) {
	forest := sidebarFixture()

	_, err := ReorderSiblings(forest, "", 0, 3)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = ReorderSiblings(forest, "", -1, 0)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = ReorderSiblings(forest, "ghost", 0, 0)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestMoveToParent_TopLevelIntoParent(t *testing.T) {
	forest := sidebarFixture()

	out, err := MoveToParent(forest, "profile", "course", -1)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "course", out[0].ID)
	assert.Equal(t, 10, out[0].Ordinal)

	children := out[0].Children
	require.Len(t, children, 2)
	assert.Equal(t, "ielts", children[0].ID)
	assert.Equal(t, 11, children[0].Ordinal)
	assert.Equal(t, "profile", children[1].ID)
	assert.Equal(t, "/profile", children[1].Path)
	assert.Equal(t, 12, children[1].Ordinal)
}

func TestMoveToParent_PromotesChildrenOfMovedParent(t *testing.T) {
	forest := sidebarFixture()

	out, err := MoveToParent(forest, "course", "media", -1)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "profile", out[0].ID)
	assert.Equal(t, "ielts", out[1].ID, "orphaned child surfaces at its parent's old slot")
	assert.Equal(t, "media", out[2].ID)

	children := out[2].Children
	require.Len(t, children, 1)
	assert.Equal(t, "course", children[0].ID)
	assert.Empty(t, children[0].Children)
}

func TestMoveToParent_ChildBetweenParents(t *testing.T) {
	forest := sidebarFixture()

	out, err := MoveToParent(forest, "ielts", "media", -1)
	require.NoError(t, err)
	assert.Empty(t, out[1].Children)
	require.Len(t, out[2].Children, 1)
	assert.Equal(t, "ielts", out[2].Children[0].ID)
	assert.Equal(t, 31, out[2].Children[0].Ordinal)
}

func TestMoveToParent_SelfParenting(t *testing.T) {
	_, err := MoveToParent(sidebarFixture(), "course", "course", -1)
	assert.ErrorIs(t, err, ErrSelfParenting)
}

func TestMoveToParent_UnknownDestination(t *testing.T) {
	_, err := MoveToParent(sidebarFixture(), "profile", "ghost", -1)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestPromoteToTopLevel(t *testing.T) {
	forest := sidebarFixture()

	out, err := PromoteToTopLevel(forest, "ielts", 0)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "ielts", out[0].ID)
	assert.Equal(t, 10, out[0].Ordinal)
	assert.Empty(t, out[0].Children)
	assert.Empty(t, out[2].Children, "origin parent loses the child")
}

func TestPromoteToTopLevel_AlreadyTopLevel(t *testing.T) {
	forest := sidebarFixture()

	out, err := PromoteToTopLevel(forest, "profile", -1)
	require.NoError(t, err)
	assert.Equal(t, forest, out)
}

func TestValidateOrdinals(t *testing.T) {
	require.NoError(t, ValidateOrdinals(sidebarFixture()))

	bad := Forest{{ID: "a", Ordinal: 10}, {ID: "b", Ordinal: 10}}
	assert.ErrorIs(t, ValidateOrdinals(bad), ErrInvalidInput)

	deep := Forest{{ID: "a", Ordinal: 10, Children: []TreeNode{
		{ID: "b", Ordinal: 11, Children: []TreeNode{{ID: "c", Ordinal: 12}}},
	}}}
	assert.ErrorIs(t, ValidateOrdinals(deep), ErrInvalidInput)
}

// Randomized mutation sequences must never break the sibling ordinal
// invariant.
func TestOrdinalInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	forest := sidebarFixture()
	nextID := 0

	topLevelIDs := func(f Forest) []string {
		ids := make([]string, len(f))
		for i, n := range f {
			ids[i] = n.ID
		}
		return ids
	}
	allIDs := func(f Forest) []string {
		var ids []string
		for _, n := range f {
			ids = append(ids, n.ID)
			for _, c := range n.Children {
				ids = append(ids, c.ID)
			}
		}
		return ids
	}

	for i := 0; i < 500; i++ {
		var err error
		var next Forest
		switch op := rng.Intn(6); op {
		case 0:
			nextID++
			next, err = InsertTopLevel(forest, TreeNode{ID: nodeName("top", nextID), Name: nodeName("Top", nextID)}, rng.Intn(len(forest)+1))
		case 1:
			tops := topLevelIDs(forest)
			if len(tops) == 0 {
				continue
			}
			nextID++
			next, err = InsertChild(forest, tops[rng.Intn(len(tops))], TreeNode{ID: nodeName("child", nextID), Name: nodeName("Child", nextID)}, -1)
		case 2:
			ids := allIDs(forest)
			if len(ids) < 2 {
				continue
			}
			next = DeleteNode(forest, ids[rng.Intn(len(ids))])
		case 3:
			if len(forest) < 2 {
				continue
			}
			next, err = ReorderSiblings(forest, "", rng.Intn(len(forest)), rng.Intn(len(forest)))
		case 4:
			tops := topLevelIDs(forest)
			if len(tops) < 2 {
				continue
			}
			src := tops[rng.Intn(len(tops))]
			dst := tops[rng.Intn(len(tops))]
			if src == dst {
				continue
			}
			next, err = MoveToParent(forest, src, dst, -1)
		default:
			ids := allIDs(forest)
			if len(ids) == 0 {
				continue
			}
			next, err = PromoteToTopLevel(forest, ids[rng.Intn(len(ids))], -1)
		}
		require.NoError(t, err)
		require.NoError(t, ValidateOrdinals(next), "ordinal invariant broken after %d operations", i+1)
		forest = next
	}
}

func nodeName(prefix string, n int) string {
	return prefix + "-" + string(rune('a'+n%26)) + string(rune('a'+(n/26)%26))
}
