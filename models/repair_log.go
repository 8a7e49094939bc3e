package models

import "time"

const RepairLogTable = "repair_logs"

// RepairLog is a damage report against an equipment type. A log becomes
// immutable once RepairDate is set.
type RepairLog struct {
	ID                uint      `gorm:"primaryKey;column:log_id" json:"logId"`
	EquipmentID       uint      `gorm:"index;not null" json:"equipmentId"`
	DamageDescription string    `gorm:"size:1000;not null" json:"damageDescription"`
	ReportedBy        uint      `gorm:"index;not null" json:"reportedBy"`
	ReportDate        time.Time `gorm:"not null" json:"reportDate"`

	RepairCost *float64   `json:"repairCost,omitempty"`
	RepairedBy *string    `gorm:"size:100" json:"repairedBy,omitempty"`
	RepairDate *time.Time `json:"repairDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (RepairLog) TableName() string { return RepairLogTable }
