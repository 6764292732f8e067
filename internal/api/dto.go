package api

import (
	"fmt"
	"time"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/store"
)

// RoomDTO 平台 API 的房间响应结构
type RoomDTO struct {
	RoomID       string              `json:"room_id"`
	TenantID     string              `json:"tenant_id"`
	RoomNumber   string              `json:"room_number"`
	RoomType     string              `json:"room_type"`
	TotalBeds    int                 `json:"total_beds"`
	OccupiedBeds int                 `json:"occupied_beds"`
	Details      string              `json:"details"`
	Students     []StudentSummaryDTO `json:"students"`
}

// StudentSummaryDTO 房间内嵌的住户摘要
type StudentSummaryDTO struct {
	ResidentID string `json:"resident_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

// MemberDTO 平台 API 的成员响应结构
type MemberDTO struct {
	MemberID     string     `json:"member_id"`
	TenantID     string     `json:"tenant_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	ResidentID   string     `json:"resident_id"`
	RoomID       string     `json:"room_id"`
	InviteStatus string     `json:"invite_status"`
	InvitedBy    string     `json:"invited_by"`
	InvitedAt    *time.Time `json:"invited_at"`
}

// toRoom 将 RoomDTO 转换为领域模型；形状不合法时返回 DecodeError
func toRoom(op string, dto RoomDTO) (domain.Room, error) {
	if dto.RoomID == "" {
		return domain.Room{}, &store.DecodeError{Op: op, Err: fmt.Errorf("room without id")}
	}
	if dto.TotalBeds < 1 {
		return domain.Room{}, &store.DecodeError{Op: op, Err: fmt.Errorf("room %q: total_beds %d < 1", dto.RoomID, dto.TotalBeds)}
	}
	if dto.OccupiedBeds < 0 || dto.OccupiedBeds > dto.TotalBeds {
		return domain.Room{}, &store.DecodeError{Op: op, Err: fmt.Errorf("room %q: occupied_beds %d out of range", dto.RoomID, dto.OccupiedBeds)}
	}
	students := make([]domain.ResidentSummary, 0, len(dto.Students))
	for _, s := range dto.Students {
		if s.ResidentID == "" {
			return domain.Room{}, &store.DecodeError{Op: op, Err: fmt.Errorf("room %q: student without resident id", dto.RoomID)}
		}
		students = append(students, domain.ResidentSummary{
			ResidentID: s.ResidentID,
			Name:       s.Name,
			Phone:      s.Phone,
		})
	}
	return domain.Room{
		RoomID:       dto.RoomID,
		TenantID:     dto.TenantID,
		RoomNumber:   dto.RoomNumber,
		RoomType:     domain.RoomType(dto.RoomType),
		TotalBeds:    dto.TotalBeds,
		OccupiedBeds: dto.OccupiedBeds,
		Details:      dto.Details,
		Students:     students,
	}, nil
}

// toMember 将 MemberDTO 转换为领域模型
func toMember(op string, dto MemberDTO) (domain.Member, error) {
	if dto.MemberID == "" {
		return domain.Member{}, &store.DecodeError{Op: op, Err: fmt.Errorf("member without id")}
	}
	if dto.Role == "" {
		return domain.Member{}, &store.DecodeError{Op: op, Err: fmt.Errorf("member %q without role", dto.MemberID)}
	}
	return domain.Member{
		MemberID:   dto.MemberID,
		TenantID:   dto.TenantID,
		Name:       dto.Name,
		Email:      dto.Email,
		Phone:      dto.Phone,
		Role:       domain.MemberRole(dto.Role),
		Status:     dto.Status,
		ResidentID: dto.ResidentID,
		RoomID:     dto.RoomID,
		Invite: domain.InviteState{
			Status:    dto.InviteStatus,
			InvitedBy: dto.InvitedBy,
			InvitedAt: dto.InvitedAt,
		},
	}, nil
}
