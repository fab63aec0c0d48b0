package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionFlags_FlagsAreIndependent(t *testing.T) {
	flags := PermissionFlags{Read: true, Delete: true}

	assert.False(t, flags.Allows(ActionCreate))
	assert.True(t, flags.Allows(ActionRead))
	assert.False(t, flags.Allows(ActionUpdate))
	assert.True(t, flags.Allows(ActionDelete))
}

func TestResource_ClosedSet(t *testing.T) {
	for _, resource := range Resources() {
		assert.True(t, resource.Valid(), string(resource))
	}
	assert.False(t, Resource("payroll").Valid())
	assert.False(t, Resource("").Valid())
}

func TestRole_FlagsForUnknownResourceReadFalse(t *testing.T) {
	role := Role{Name: "Editor", Permissions: map[Resource]PermissionFlags{
		ResourceCourse: {Read: true},
	}}

	assert.False(t, role.Flags(ResourceMedia).Allows(ActionRead))
	assert.True(t, role.Flags(ResourceCourse).Allows(ActionRead))
}

func TestRole_HasUIAccessMatchesNameAndPathExactly(t *testing.T) {
	role := Role{UIAccess: []UIAccessEntry{{Name: "Course", Path: "/course"}}}

	assert.True(t, role.HasUIAccess("Course", "/course"))
	assert.False(t, role.HasUIAccess("Course", "/courses"))
	assert.False(t, role.HasUIAccess("course", "/course"))
}
