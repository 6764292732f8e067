package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pgease-sync/internal/store"
)

// RoomSheetHeader 房间工作表表头
var RoomSheetHeader = []string{
	"Room Number",
	"Room Type",
	"Total Beds",
	"Occupied Beds",
	"Available Beds",
	"Residents",
	"Details",
}

// ResidentSheetHeader 住户工作表表头
var ResidentSheetHeader = []string{
	"Name",
	"Phone",
	"Email",
	"Status",
	"Room Number",
}

// BuildRoster 从快照生成一个租户的入住名册 Excel（Rooms / Residents 两个工作表）
func BuildRoster(snap *store.Snapshot, tenantID string) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteToBuffer needs the file open

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRoomSheet(f, snap, tenantID, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeResidentSheet(f, snap, tenantID, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	f.Close()
	return buf.Bytes(), nil
}

func writeRoomSheet(f *excelize.File, snap *store.Snapshot, tenantID string, headerStyle int) error {
	const sheet = "Rooms"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeHeader(f, sheet, RoomSheetHeader, headerStyle); err != nil {
		return err
	}

	for row, room := range snap.RoomsByTenant(tenantID) {
		values := []any{
			room.RoomNumber,
			string(room.RoomType),
			room.TotalBeds,
			room.OccupiedBeds,
			room.AvailableBeds(),
			len(room.Students),
			room.Details,
		}
		if err := writeRow(f, sheet, row+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeResidentSheet(f *excelize.File, snap *store.Snapshot, tenantID string, headerStyle int) error {
	const sheet = "Residents"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeHeader(f, sheet, ResidentSheetHeader, headerStyle); err != nil {
		return err
	}

	for row, resident := range snap.ResidentsByTenant(tenantID) {
		roomNumber := ""
		if resident.RoomID != "" {
			if room, ok := snap.Room(resident.RoomID); ok {
				roomNumber = room.RoomNumber
			}
		}
		values := []any{
			resident.Name,
			resident.Phone,
			resident.Email,
			string(resident.Status),
			roomNumber,
		}
		if err := writeRow(f, sheet, row+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
