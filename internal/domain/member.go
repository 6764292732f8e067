package domain

import "time"

// MemberRole 成员角色
type MemberRole string

const (
	RoleResident   MemberRole = "resident"
	RoleStaff      MemberRole = "staff"
	RoleManager    MemberRole = "manager"
	RoleWarden     MemberRole = "warden"
	RoleAccountant MemberRole = "accountant"
	RoleVendor     MemberRole = "vendor"
	RoleAdmin      MemberRole = "admin"
)

// InviteState 邀请子记录
type InviteState struct {
	Status    string     `json:"status"` // invited / accepted / expired
	InvitedBy string     `json:"invited_by,omitempty"`
	InvitedAt *time.Time `json:"invited_at,omitempty"`
}

// Member 成员领域模型（覆盖所有角色的超集身份记录）
// ResidentID 非空时该成员投影出一条 Resident 记录；RoomID 为该住户的床位绑定
type Member struct {
	MemberID   string      `json:"member_id"`
	TenantID   string      `json:"tenant_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Role       MemberRole  `json:"role"`
	Status     string      `json:"status"`
	ResidentID string      `json:"resident_id,omitempty"`
	RoomID     string      `json:"room_id,omitempty"`
	Invite     InviteState `json:"invite"`
}

// IsResident 是否携带住户身份
func (m Member) IsResident() bool {
	return m.ResidentID != ""
}

// AsResident 投影出 Resident 记录（仅在 IsResident 时有意义）
func (m Member) AsResident() Resident {
	return Resident{
		ResidentID: m.ResidentID,
		TenantID:   m.TenantID,
		Name:       m.Name,
		Phone:      m.Phone,
		Email:      m.Email,
		RoomID:     m.RoomID,
		Status:     ResidentStatusActive,
	}
}

// Clone 深拷贝
func (m Member) Clone() Member {
	cp := m
	if m.Invite.InvitedAt != nil {
		t := *m.Invite.InvitedAt
		cp.Invite.InvitedAt = &t
	}
	return cp
}
