package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"elearn-backoffice/internal/domain"
	"elearn-backoffice/internal/ports"
)

// TreeOpKind names one structural mutation of a persisted forest.
type TreeOpKind string

const (
	OpInsertTopLevel TreeOpKind = "insert_top_level"
	OpInsertChild    TreeOpKind = "insert_child"
	OpDelete         TreeOpKind = "delete"
	OpReorder        TreeOpKind = "reorder"
	OpMoveToParent   TreeOpKind = "move_to_parent"
	OpPromote        TreeOpKind = "promote"
)

// TreeOp carries the parameters of one editor operation. Index fields use -1
// for "end of list".
type TreeOp struct {
	Kind     TreeOpKind       `json:"kind"`
	NodeID   string           `json:"node_id,omitempty"`
	ParentID string           `json:"parent_id,omitempty"`
	Node     *domain.TreeNode `json:"node,omitempty"`
	From     int              `json:"from,omitempty"`
	To       int              `json:"to,omitempty"`
	At       int              `json:"at"`
}

// TreeService loads, edits, and persists navigation and page-content forests.
// Saves replace the whole document; concurrent editors race last-writer-wins
// and serializing edits is the caller's concern.
type TreeService struct {
	repo   ports.TreeRepository
	logger ports.Logger
}

func NewTreeService(repo ports.TreeRepository, logger ports.Logger) *TreeService {
	return &TreeService{repo: repo, logger: logger}
}

// Get returns the forest stored under key, or an empty forest when the
// document has never been saved.
func (s *TreeService) Get(ctx context.Context, key string) (domain.Forest, error) {
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	forest, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Forest{}, nil
		}
		return nil, err
	}
	return forest, nil
}

// Replace overwrites the whole document with the submitted forest after
// renumbering it. Duplicate node ids mean the caller holds a corrupted tree.
func (s *TreeService) Replace(ctx context.Context, key string, forest domain.Forest) (domain.Forest, error) {
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := checkUniqueIDs(forest); err != nil {
		return nil, err
	}
	forest = domain.Renumber(forest)
	if err := domain.ValidateOrdinals(forest); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, key, forest); err != nil {
		return nil, err
	}
	return forest, nil
}

// Apply loads the document, applies one editor operation, and persists the
// result. Inserted nodes without an id are assigned one.
func (s *TreeService) Apply(ctx context.Context, key string, op TreeOp) (domain.Forest, error) {
	forest, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	next, err := s.apply(forest, op)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, key, next); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "tree updated", "key", key, "op", string(op.Kind))
	return next, nil
}

func (s *TreeService) apply(forest domain.Forest, op TreeOp) (domain.Forest, error) {
	switch op.Kind {
	case OpInsertTopLevel:
		node, err := newNode(op)
		if err != nil {
			return nil, err
		}
		return domain.InsertTopLevel(forest, node, op.At)
	case OpInsertChild:
		node, err := newNode(op)
		if err != nil {
			return nil, err
		}
		parent, err := domain.FindNode(forest, op.ParentID)
		if err != nil {
			return nil, domain.ErrParentNotFound
		}
		if domain.ChildCollides(parent.Node, node) {
			return nil, domain.ErrDuplicateChild
		}
		return domain.InsertChild(forest, op.ParentID, node, op.At)
	case OpDelete:
		return domain.DeleteNode(forest, op.NodeID), nil
	case OpReorder:
		return domain.ReorderSiblings(forest, op.ParentID, op.From, op.To)
	case OpMoveToParent:
		return domain.MoveToParent(forest, op.NodeID, op.ParentID, op.At)
	case OpPromote:
		return domain.PromoteToTopLevel(forest, op.NodeID, op.At)
	default:
		return nil, fmt.Errorf("%w: unknown tree operation %q", domain.ErrInvalidInput, op.Kind)
	}
}

func newNode(op TreeOp) (domain.TreeNode, error) {
	if op.Node == nil || op.Node.Name == "" {
		return domain.TreeNode{}, domain.ErrInvalidInput
	}
	node := *op.Node
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	return node, nil
}

func checkUniqueIDs(forest domain.Forest) error {
	seen := map[string]bool{}
	note := func(id string) error {
		if id == "" || seen[id] {
			return fmt.Errorf("%w: duplicate or empty node id %q", domain.ErrInvalidInput, id)
		}
		seen[id] = true
		return nil
	}
	for _, node := range forest {
		if err := note(node.ID); err != nil {
			return err
		}
		for _, child := range node.Children {
			if err := note(child.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
