package application

import (
	"context"
	"errors"
	"slices"
	"time"

	"elearn-backoffice/internal/domain"
	"elearn-backoffice/internal/ports"
)

type RoleService struct {
	repo ports.RoleRepository
}

func NewRoleService(repo ports.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

func validateRole(role domain.Role) error {
	if role.Name == "" {
		return domain.ErrInvalidInput
	}
	for resource := range role.Permissions {
		if !resource.Valid() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

func (s *RoleService) Create(ctx context.Context, role domain.Role) error {
	if err := validateRole(role); err != nil {
		return err
	}
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now
	return s.repo.Create(ctx, role)
}

func (s *RoleService) Update(ctx context.Context, role domain.Role) error {
	if err := validateRole(role); err != nil {
		return err
	}
	role.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, role)
}

func (s *RoleService) Delete(ctx context.Context, name string) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	return s.repo.Delete(ctx, name)
}

func (s *RoleService) GetByName(ctx context.Context, name string) (domain.Role, error) {
	if name == "" {
		return domain.Role{}, domain.ErrInvalidInput
	}
	return s.repo.GetByName(ctx, name)
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.repo.List(ctx)
}

// AccessService manages which role names a principal holds.
type AccessService struct {
	assignments ports.AssignmentRepository
	roles       ports.RoleRepository
}

func NewAccessService(assignments ports.AssignmentRepository, roles ports.RoleRepository) *AccessService {
	return &AccessService{assignments: assignments, roles: roles}
}

// Grant adds role names to a principal's assignment, creating it when absent.
// Every granted role must exist.
func (s *AccessService) Grant(ctx context.Context, principal string, roleNames []string) error {
	if principal == "" || len(roleNames) == 0 {
		return domain.ErrInvalidInput
	}
	for _, name := range roleNames {
		if _, err := s.roles.GetByName(ctx, name); err != nil {
			return err
		}
	}
	current, err := s.assignments.GetByPrincipal(ctx, principal)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	merged := current.RoleNames
	for _, name := range roleNames {
		if !slices.Contains(merged, name) {
			merged = append(merged, name)
		}
	}
	return s.assignments.Put(ctx, domain.AccessAssignment{
		Principal: principal,
		RoleNames: merged,
		UpdatedAt: time.Now().UTC(),
	})
}

// Revoke removes role names from an assignment; an assignment left with no
// roles is deleted outright.
func (s *AccessService) Revoke(ctx context.Context, principal string, roleNames []string) error {
	if principal == "" || len(roleNames) == 0 {
		return domain.ErrInvalidInput
	}
	current, err := s.assignments.GetByPrincipal(ctx, principal)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(current.RoleNames))
	for _, name := range current.RoleNames {
		if !slices.Contains(roleNames, name) {
			remaining = append(remaining, name)
		}
	}
	if len(remaining) == 0 {
		return s.assignments.Delete(ctx, principal)
	}
	return s.assignments.Put(ctx, domain.AccessAssignment{
		Principal: principal,
		RoleNames: remaining,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *AccessService) RevokeAll(ctx context.Context, principal string) error {
	if principal == "" {
		return domain.ErrInvalidInput
	}
	return s.assignments.Delete(ctx, principal)
}

func (s *AccessService) Get(ctx context.Context, principal string) (domain.AccessAssignment, error) {
	if principal == "" {
		return domain.AccessAssignment{}, domain.ErrInvalidInput
	}
	return s.assignments.GetByPrincipal(ctx, principal)
}
