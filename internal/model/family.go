package model

import "time"

// Family member roles
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// DefaultApprovalThreshold is the number of distinct approve votes that
// auto-approves a pending review entry in a family.
const DefaultApprovalThreshold = 2

type Family struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	CreatedBy         int64     `json:"created_by"`
	ApprovalThreshold int       `json:"approval_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type FamilyMember struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
