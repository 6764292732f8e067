package domain

import "time"

// ResidentStatus 住户状态
type ResidentStatus string

const (
	ResidentStatusActive     ResidentStatus = "active"
	ResidentStatusOnNotice   ResidentStatus = "on_notice"
	ResidentStatusCheckedOut ResidentStatus = "checked_out"
)

// ResidentSummary 房间内嵌的住户摘要（Room.Students 的元素）
type ResidentSummary struct {
	ResidentID string `json:"resident_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
}

// Resident 住户领域模型
// RoomID 为空串表示未分配床位；非空时必须指向 Room 映射中的房间
type Resident struct {
	ResidentID   string         `json:"resident_id"`
	TenantID     string         `json:"tenant_id"`
	Name         string         `json:"name"`
	Phone        string         `json:"phone,omitempty"`
	Email        string         `json:"email,omitempty"`
	RoomID       string         `json:"room_id,omitempty"`
	Status       ResidentStatus `json:"status"`
	LastCheckIn  *time.Time     `json:"last_check_in,omitempty"`
	LastCheckOut *time.Time     `json:"last_check_out,omitempty"`
}

// Summary 生成房间内嵌列表使用的摘要
func (r Resident) Summary() ResidentSummary {
	return ResidentSummary{
		ResidentID: r.ResidentID,
		Name:       r.Name,
		Phone:      r.Phone,
	}
}

// Clone 深拷贝
func (r Resident) Clone() Resident {
	cp := r
	if r.LastCheckIn != nil {
		t := *r.LastCheckIn
		cp.LastCheckIn = &t
	}
	if r.LastCheckOut != nil {
		t := *r.LastCheckOut
		cp.LastCheckOut = &t
	}
	return cp
}
