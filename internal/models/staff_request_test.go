package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaffTypeRole(t *testing.T) {
	tests := []struct {
		staffType StaffType
		want      Role
		ok        bool
	}{
		{StaffTypePodcaster, RolePodcaster, true},
		{StaffTypeMinecraft, RoleStaffMC, true},
		{StaffTypeDiscord, RoleStaffDiscord, true},
		{StaffType("moderator"), "", false},
		{StaffType(""), "", false},
	}
	for _, tt := range tests {
		role, ok := tt.staffType.Role()
		assert.Equal(t, tt.ok, ok, string(tt.staffType))
		assert.Equal(t, tt.want, role, string(tt.staffType))
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []Category{CategoryPodcast, CategoryMinecraft, CategoryDiscord} {
		assert.True(t, ValidCategory(c), string(c))
	}
	assert.False(t, ValidCategory(Category("concert")))
	assert.False(t, ValidCategory(Category("")))
}
