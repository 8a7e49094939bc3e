package db

import (
	"context"

	"schoolgear/models"

	"gorm.io/gorm"
)

// Inventory accessor. All mutation of available_quantity goes through
// AdjustAvailable; the ledger never does a read-modify-write of its own.

func (r *Repo) GetAvailable(ctx context.Context, equipmentID uint) (int, error) {
	var available int
	err := r.DB.WithContext(ctx).Model(&models.Equipment{}).
		Select("available_quantity").
		Where("equipment_id = ?", equipmentID).
		First(&available).Error
	if err != nil {
		return 0, translate(err)
	}
	return available, nil
}

// AdjustAvailable applies delta to available_quantity as a single conditional
// update. The WHERE clause is the safety check: a result below zero matches no
// row, so two concurrent decrements cannot both commit past the remaining
// stock. Callers pass their open transaction; nil falls back to the pool.
func (r *Repo) AdjustAvailable(ctx context.Context, tx *gorm.DB, equipmentID uint, delta int) error {
	if tx == nil {
		tx = r.DB
	}
	res := tx.WithContext(ctx).Model(&models.Equipment{}).
		Where("equipment_id = ? AND available_quantity + ? >= 0", equipmentID, delta).
		Update("available_quantity", gorm.Expr("available_quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing row from an oversell.
		var n int64
		if err := tx.WithContext(ctx).Model(&models.Equipment{}).
			Where("equipment_id = ?", equipmentID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrInsufficientInventory
	}
	return nil
}

// InventoryConsistent reports whether 0 <= available <= total holds for the
// equipment row. Used by tests and the health probe, not by request paths.
func (r *Repo) InventoryConsistent(ctx context.Context, equipmentID uint) (bool, error) {
	e, err := r.FindEquipmentByID(ctx, equipmentID)
	if err != nil {
		return false, err
	}
	return e.AvailableQuantity >= 0 && e.AvailableQuantity <= e.TotalQuantity, nil
}
