package models

import "time"

// StaffType is the access category a visitor asks for. It is request-only
// vocabulary, mapped to a Role exactly once at approval time.
type StaffType string

const (
	StaffTypePodcaster StaffType = "podcaster"
	StaffTypeMinecraft StaffType = "minecraft"
	StaffTypeDiscord   StaffType = "discord"
)

// Role returns the Role granted when a request of this type is approved.
func (t StaffType) Role() (Role, bool) {
	switch t {
	case StaffTypePodcaster:
		return RolePodcaster, true
	case StaffTypeMinecraft:
		return RoleStaffMC, true
	case StaffTypeDiscord:
		return RoleStaffDiscord, true
	}
	return "", false
}

// RequestStatus is the lifecycle state of a staff request. A request leaves
// pending exactly once.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// StaffRequest is a pending application for staff access.
type StaffRequest struct {
	ID        string        `json:"id"`
	DiscordID string        `json:"discordId"`
	Username  string        `json:"username"`
	AvatarURL string        `json:"avatarUrl,omitempty"`
	StaffType StaffType     `json:"staffType"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
