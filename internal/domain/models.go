package domain

import "time"

// Action is one of the four CRUD verbs a role can be granted on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	default:
		return false
	}
}

// Resource names the back-office modules access is checked against. The set is
// closed: permission maps may only carry these keys.
type Resource string

const (
	ResourceCourse           Resource = "course"
	ResourceBatch            Resource = "batch"
	ResourceMedia            Resource = "media"
	ResourcePage             Resource = "page"
	ResourceFooter           Resource = "footer"
	ResourceFormSubmission   Resource = "form_submission"
	ResourceRolePermission   Resource = "role_permission"
	ResourceAccessManagement Resource = "access_management"
)

func (r Resource) Valid() bool {
	switch r {
	case ResourceCourse, ResourceBatch, ResourceMedia, ResourcePage,
		ResourceFooter, ResourceFormSubmission, ResourceRolePermission,
		ResourceAccessManagement:
		return true
	default:
		return false
	}
}

// Resources lists every known resource in a fixed order.
func Resources() []Resource {
	return []Resource{
		ResourceCourse,
		ResourceBatch,
		ResourceMedia,
		ResourcePage,
		ResourceFooter,
		ResourceFormSubmission,
		ResourceRolePermission,
		ResourceAccessManagement,
	}
}

// PermissionFlags holds the four independent CRUD grants for one resource.
// No flag implies another.
type PermissionFlags struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

func (f PermissionFlags) Allows(action Action) bool {
	switch action {
	case ActionCreate:
		return f.Create
	case ActionRead:
		return f.Read
	case ActionUpdate:
		return f.Update
	case ActionDelete:
		return f.Delete
	default:
		return false
	}
}

// UIAccessEntry grants visibility of one dashboard navigation target.
type UIAccessEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Role is a named bundle of per-resource permission flags plus the navigation
// targets its holders may see. Roles are keyed by name.
type Role struct {
	Name        string                       `json:"name"`
	Permissions map[Resource]PermissionFlags `json:"permissions"`
	UIAccess    []UIAccessEntry              `json:"ui_access"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// Flags returns the permission flags for a resource, zero-valued when the
// resource is not present in the role's map.
func (r Role) Flags(resource Resource) PermissionFlags {
	return r.Permissions[resource]
}

// HasUIAccess reports whether the role grants visibility of the exact
// {name, path} navigation target.
func (r Role) HasUIAccess(name, path string) bool {
	for _, entry := range r.UIAccess {
		if entry.Name == name && entry.Path == path {
			return true
		}
	}
	return false
}

// AccessAssignment maps a principal (an email) to the set of role names
// granted to it. Role names may dangle; resolution skips them.
type AccessAssignment struct {
	Principal string    `json:"principal"`
	RoleNames []string  `json:"role_names"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DenyReason explains a denied access decision.
type DenyReason string

const (
	DenyNoSession               DenyReason = "no_session"
	DenyNoRolesAssigned         DenyReason = "no_roles_assigned"
	DenyInsufficientPermissions DenyReason = "insufficient_permissions"
)

// Decision is the outcome of one access resolution. GrantedBy names the role
// that supplied the first matching grant; it is empty on a deny.
type Decision struct {
	Allowed   bool       `json:"allowed"`
	Reason    DenyReason `json:"reason,omitempty"`
	Resource  Resource   `json:"resource"`
	Action    Action     `json:"action"`
	GrantedBy string     `json:"granted_by,omitempty"`
}

func Allow(resource Resource, action Action, grantedBy string) Decision {
	return Decision{Allowed: true, Resource: resource, Action: action, GrantedBy: grantedBy}
}

func Deny(resource Resource, action Action, reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason, Resource: resource, Action: action}
}
