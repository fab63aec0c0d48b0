package ports

import (
	"context"

	"elearn-backoffice/internal/domain"
)

type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	Update(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, name string) error
	GetByName(ctx context.Context, name string) (domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

type AssignmentRepository interface {
	Put(ctx context.Context, assignment domain.AccessAssignment) error
	GetByPrincipal(ctx context.Context, principal string) (domain.AccessAssignment, error)
	Delete(ctx context.Context, principal string) error
}

// TreeRepository persists whole forests keyed by a document key ("sidebar",
// or a page slug). Saves replace the full document; last writer wins.
type TreeRepository interface {
	Get(ctx context.Context, key string) (domain.Forest, error)
	Replace(ctx context.Context, key string, forest domain.Forest) error
}
