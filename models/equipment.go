package models

import "time"

const (
	CategoryTable  = "equipment_categories"
	EquipmentTable = "equipment"
)

type EquipmentCategory struct {
	ID          uint      `gorm:"primaryKey;column:category_id" json:"categoryId"`
	Name        string    `gorm:"column:category_name;uniqueIndex;size:100;not null" json:"categoryName"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (EquipmentCategory) TableName() string { return CategoryTable }

// Equipment is one kind of loanable item. AvailableQuantity is owned by the
// lending ledger: it moves only on approve/return, never from handlers.
type Equipment struct {
	ID                uint      `gorm:"primaryKey;column:equipment_id" json:"equipmentId"`
	Name              string    `gorm:"size:255;not null;index" json:"name"`
	CategoryID        uint      `gorm:"index;not null" json:"categoryId"`
	TotalQuantity     int       `gorm:"not null;check:total_quantity >= 0" json:"totalQuantity"`
	AvailableQuantity int       `gorm:"not null;check:available_quantity >= 0" json:"availableQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }
