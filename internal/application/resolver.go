package application

import (
	"context"
	"errors"

	"elearn-backoffice/internal/domain"
	"elearn-backoffice/internal/ports"
)

// AccessResolver decides whether a principal may perform an action on a
// resource. It is a pure function over the injected lookups: a repository
// failure surfaces as an error so callers can tell "denied" from "could not
// determine".
type AccessResolver struct {
	assignments ports.AssignmentRepository
	roles       ports.RoleRepository
	logger      ports.Logger
}

func NewAccessResolver(assignments ports.AssignmentRepository, roles ports.RoleRepository, logger ports.Logger) *AccessResolver {
	return &AccessResolver{assignments: assignments, roles: roles, logger: logger}
}

// ResolveAccess applies first-match-allow across the principal's assigned
// roles: the first role granting the action wins and the scan stops there.
// Dangling role names are skipped, and a resource missing from a role's
// permission map reads as false.
func (r *AccessResolver) ResolveAccess(ctx context.Context, principal string, resource domain.Resource, action domain.Action) (domain.Decision, error) {
	if !resource.Valid() || !action.Valid() {
		return domain.Decision{}, domain.ErrInvalidInput
	}
	if principal == "" {
		return domain.Deny(resource, action, domain.DenyNoSession), nil
	}
	assignment, err := r.assignments.GetByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Deny(resource, action, domain.DenyNoRolesAssigned), nil
		}
		return domain.Decision{}, err
	}
	if len(assignment.RoleNames) == 0 {
		return domain.Deny(resource, action, domain.DenyNoRolesAssigned), nil
	}
	for _, name := range assignment.RoleNames {
		role, err := r.roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return domain.Decision{}, err
		}
		if role.Flags(resource).Allows(action) {
			return domain.Allow(resource, action, role.Name), nil
		}
	}
	r.logger.Info(ctx, "access denied",
		"principal", principal,
		"resource", string(resource),
		"action", string(action),
	)
	return domain.Deny(resource, action, domain.DenyInsufficientPermissions), nil
}

// ResolveUIVisibility reports whether any assigned role lists the exact
// {name, path} navigation target. Same iteration strategy as ResolveAccess.
func (r *AccessResolver) ResolveUIVisibility(ctx context.Context, principal, navName, navPath string) (bool, error) {
	if principal == "" {
		return false, nil
	}
	assignment, err := r.assignments.GetByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	for _, name := range assignment.RoleNames {
		role, err := r.roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return false, err
		}
		if role.HasUIAccess(navName, navPath) {
			return true, nil
		}
	}
	return false, nil
}
