package domain

// RoomType 房间类型
type RoomType string

const (
	RoomTypeSingle    RoomType = "single"
	RoomTypeDouble    RoomType = "double"
	RoomTypeTriple    RoomType = "triple"
	RoomTypeDormitory RoomType = "dormitory"
)

// Room 房间领域模型
// Students 是反规范化的住户摘要列表，与 Resident.RoomID 保持最终一致
type Room struct {
	RoomID       string            `json:"room_id"`
	TenantID     string            `json:"tenant_id"`
	RoomNumber   string            `json:"room_number"` // 展示用编号，租户内唯一
	RoomType     RoomType          `json:"room_type"`
	TotalBeds    int               `json:"total_beds"`
	OccupiedBeds int               `json:"occupied_beds"`
	Details      string            `json:"details,omitempty"`
	Students     []ResidentSummary `json:"students,omitempty"`
}

// AvailableBeds 剩余床位数
func (r Room) AvailableBeds() int {
	n := r.TotalBeds - r.OccupiedBeds
	if n < 0 {
		return 0
	}
	return n
}

// HasStudent 判断住户摘要是否已在房间列表中
func (r Room) HasStudent(residentID string) bool {
	for _, s := range r.Students {
		if s.ResidentID == residentID {
			return true
		}
	}
	return false
}

// Clone 深拷贝（Students 切片不与原值共享底层数组）
func (r Room) Clone() Room {
	cp := r
	cp.Students = append([]ResidentSummary(nil), r.Students...)
	return cp
}
