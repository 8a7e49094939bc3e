package db

import (
	"context"
	"time"

	"schoolgear/models"
)

// Repair logs

func (r *Repo) CreateRepairLog(ctx context.Context, lg *models.RepairLog) error {
	// The report must point at real equipment.
	if _, err := r.FindEquipmentByID(ctx, lg.EquipmentID); err != nil {
		return err
	}
	lg.ReportDate = time.Now().UTC()
	lg.RepairCost = nil
	lg.RepairedBy = nil
	lg.RepairDate = nil
	return translate(r.DB.WithContext(ctx).Create(lg).Error)
}

type RepairLogQuery struct {
	EquipmentID uint
	OpenOnly    bool
}

func (r *Repo) ListRepairLogs(ctx context.Context, q RepairLogQuery) ([]models.RepairLog, error) {
	tx := r.DB.WithContext(ctx).Model(&models.RepairLog{})
	if q.EquipmentID != 0 {
		tx = tx.Where("equipment_id = ?", q.EquipmentID)
	}
	if q.OpenOnly {
		tx = tx.Where("repair_date IS NULL")
	}
	var logs []models.RepairLog
	err := tx.Order("report_date DESC").Find(&logs).Error
	return logs, err
}

// CompleteRepairLog fills cost/repairer/date exactly once. The repair_date IS
// NULL guard makes a completed log immutable: a second completion matches no
// row and reports ErrNotFound, same as an absent log.
func (r *Repo) CompleteRepairLog(ctx context.Context, id uint, cost float64, repairedBy string) error {
	if cost <= 0 || repairedBy == "" {
		return ErrValidation
	}
	res := r.DB.WithContext(ctx).Model(&models.RepairLog{}).
		Where("log_id = ? AND repair_date IS NULL", id).
		Updates(map[string]any{
			"repair_cost": cost,
			"repaired_by": repairedBy,
			"repair_date": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
