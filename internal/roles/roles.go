// Package roles is the pure authorization model for staff management: which
// role sets exist, how legacy role names normalize, and who may edit or delete
// whom. It holds no state and performs no I/O; handlers resolve the actor and
// target, then ask this package.
package roles

import (
	"errors"
	"sort"

	"github.com/mango-army/events-backend/internal/models"
)

var (
	// ErrInvalidRoleSet means a proposed role set was empty after discarding
	// unknown roles.
	ErrInvalidRoleSet = errors.New("must have at least one valid role")
	// ErrForbidden means a role predicate rejected the operation.
	ErrForbidden = errors.New("insufficient role permissions")
)

// priority orders roles for display, lower = more senior. It carries no
// authorization meaning.
var priority = map[models.Role]int{
	models.RoleOwner:        0,
	models.RoleAdmin:        1,
	models.RoleDeveloper:    2,
	models.RoleStaffDiscord: 3,
	models.RoleStaffMC:      4,
	models.RolePodcaster:    5,
}

// legacy maps retired role names to their current equivalent.
var legacy = map[string]models.Role{
	"staff-podcaster": models.RolePodcaster,
	"staff":           models.RolePodcaster,
}

// Priority returns the display rank of a role; unknown roles sort last.
func Priority(r models.Role) int {
	if p, ok := priority[r]; ok {
		return p
	}
	return 99
}

// Valid reports whether r belongs to the closed role set.
func Valid(r models.Role) bool {
	_, ok := priority[r]
	return ok
}

// Normalize rewrites legacy role names, discards anything outside the closed
// set, deduplicates, and orders by priority. Returns ErrInvalidRoleSet when
// nothing valid remains. Normalizing an already-normalized set is a no-op.
func Normalize(raw []string) ([]models.Role, error) {
	seen := make(map[models.Role]bool, len(raw))
	var out []models.Role
	for _, s := range raw {
		r := models.Role(s)
		if mapped, ok := legacy[s]; ok {
			r = mapped
		}
		if !Valid(r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, ErrInvalidRoleSet
	}
	sort.SliceStable(out, func(i, j int) bool { return Priority(out[i]) < Priority(out[j]) })
	return out, nil
}

// NormalizeRoles is Normalize over an already-typed set, as loaded from
// storage (old rows may still carry legacy names).
func NormalizeRoles(rs []models.Role) ([]models.Role, error) {
	raw := make([]string, len(rs))
	for i, r := range rs {
		raw[i] = string(r)
	}
	return Normalize(raw)
}

// EffectiveRoles returns a user's normalized role set, falling back to the
// legacy singular role field for rows written before multi-role support.
// Returns nil when nothing valid remains; a nil set carries no permissions.
func EffectiveRoles(u *models.User) []models.Role {
	rs := u.Roles
	if len(rs) == 0 && u.Role != "" {
		rs = []models.Role{u.Role}
	}
	out, err := NormalizeRoles(rs)
	if err != nil {
		return nil
	}
	return out
}

func contains(set []models.Role, r models.Role) bool {
	for _, v := range set {
		if v == r {
			return true
		}
	}
	return false
}

// IsOwner reports whether the role set includes owner.
func IsOwner(set []models.Role) bool { return contains(set, models.RoleOwner) }

// IsDeveloper reports whether the role set includes developer.
func IsDeveloper(set []models.Role) bool { return contains(set, models.RoleDeveloper) }

// CanEdit decides whether an actor may mutate a target user's roles or delete
// the target. Owners edit anyone, including other owners. Developers edit
// anyone except owners. Everyone else edits only targets that are neither
// owner nor developer.
func CanEdit(actor, target []models.Role) bool {
	if IsOwner(actor) {
		return true
	}
	if IsDeveloper(actor) && !IsOwner(target) {
		return true
	}
	if !IsOwner(target) && !IsDeveloper(target) {
		return true
	}
	return false
}

// IsProtected is the display-side complement of CanEdit: why the edit control
// is unavailable for this target. Nobody is protected from an owner; only
// owners are protected from a developer; owners and developers are protected
// from everyone else.
func IsProtected(actor, target []models.Role) bool {
	if IsOwner(actor) {
		return false
	}
	if IsDeveloper(actor) {
		return IsOwner(target)
	}
	return IsOwner(target) || IsDeveloper(target)
}

// CanAssign checks the assignment restriction on a proposed role set: granting
// owner or developer requires an owner actor. The caller must already have
// passed CanEdit for the target.
func CanAssign(actor, proposed []models.Role) error {
	if contains(proposed, models.RoleOwner) && !IsOwner(actor) {
		return ErrForbidden
	}
	if contains(proposed, models.RoleDeveloper) && !IsOwner(actor) {
		return ErrForbidden
	}
	return nil
}
