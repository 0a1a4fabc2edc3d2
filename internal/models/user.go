package models

import "time"

// Role is a staff permission tag. The set is closed: anything outside it is
// discarded during normalization.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleAdmin        Role = "admin"
	RoleDeveloper    Role = "developer"
	RoleStaffDiscord Role = "staff-discord"
	RoleStaffMC      Role = "staff-mc"
	RolePodcaster    Role = "podcaster"
)

// User is a staff member, keyed by their immutable Discord ID.
// Role mirrors Roles[0] for clients that predate multi-role support and is
// kept in sync on every write.
type User struct {
	DiscordID string    `json:"discordId"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Password  string    `json:"-"` // bcrypt hash
	Role      Role      `json:"role"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	DiscordID string    `json:"discordId"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Role      Role      `json:"role"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		DiscordID: u.DiscordID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}
