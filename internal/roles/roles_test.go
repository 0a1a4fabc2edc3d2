package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mango-army/events-backend/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []models.Role
		wantErr error
	}{
		{
			name: "legacy names map to podcaster",
			in:   []string{"staff-podcaster", "staff"},
			want: []models.Role{models.RolePodcaster},
		},
		{
			name: "unknown roles discarded",
			in:   []string{"admin", "superuser", "moderator"},
			want: []models.Role{models.RoleAdmin},
		},
		{
			name: "sorted by priority, owner first",
			in:   []string{"podcaster", "owner", "staff-mc"},
			want: []models.Role{models.RoleOwner, models.RoleStaffMC, models.RolePodcaster},
		},
		{
			name:    "entirely invalid set rejected",
			in:      []string{"superuser", ""},
			wantErr: ErrInvalidRoleSet,
		},
		{
			name:    "empty set rejected",
			in:      nil,
			wantErr: ErrInvalidRoleSet,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize([]string{"staff", "developer", "owner"})
	require.NoError(t, err)
	second, err := NormalizeRoles(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCanEdit(t *testing.T) {
	owner := []models.Role{models.RoleOwner}
	admin := []models.Role{models.RoleAdmin}
	developer := []models.Role{models.RoleDeveloper}
	podcaster := []models.Role{models.RolePodcaster}

	tests := []struct {
		name          string
		actor, target []models.Role
		want          bool
	}{
		{"owner edits owner", owner, owner, true},
		{"owner edits developer", owner, developer, true},
		{"developer edits admin", developer, admin, true},
		{"developer edits developer", developer, developer, true},
		{"developer cannot edit owner", developer, owner, false},
		{"admin edits podcaster", admin, podcaster, true},
		{"admin cannot edit owner", admin, owner, false},
		{"admin cannot edit developer", admin, developer, false},
		{"no roles still edits plain staff", nil, podcaster, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEdit(tt.actor, tt.target))
		})
	}
}

func TestIsProtected(t *testing.T) {
	owner := []models.Role{models.RoleOwner}
	admin := []models.Role{models.RoleAdmin}
	developer := []models.Role{models.RoleDeveloper}

	// Nobody is protected from an owner, regardless of target.
	for _, target := range [][]models.Role{owner, admin, developer, nil} {
		assert.False(t, IsProtected(owner, target))
	}

	assert.True(t, IsProtected(admin, owner))
	assert.True(t, IsProtected(admin, developer))
	assert.False(t, IsProtected(admin, admin))
	assert.True(t, IsProtected(developer, owner))
	assert.False(t, IsProtected(developer, developer))
}

func TestCanAssign(t *testing.T) {
	owner := []models.Role{models.RoleOwner}
	admin := []models.Role{models.RoleAdmin}

	assert.NoError(t, CanAssign(owner, []models.Role{models.RoleOwner}))
	assert.NoError(t, CanAssign(owner, []models.Role{models.RoleDeveloper}))
	assert.ErrorIs(t, CanAssign(admin, []models.Role{models.RoleOwner}), ErrForbidden)
	assert.ErrorIs(t, CanAssign(admin, []models.Role{models.RoleDeveloper, models.RolePodcaster}), ErrForbidden)
	assert.NoError(t, CanAssign(admin, []models.Role{models.RoleStaffMC, models.RolePodcaster}))
}

func TestSingleRoleRemoval(t *testing.T) {
	// Removing one of two roles leaves exactly one; removing the last is rejected.
	two, err := Normalize([]string{"admin", "podcaster"})
	require.NoError(t, err)
	require.Len(t, two, 2)

	one, err := Normalize([]string{"admin"})
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleAdmin}, one)

	_, err = Normalize([]string{})
	assert.ErrorIs(t, err, ErrInvalidRoleSet)
}
