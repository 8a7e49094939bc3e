package db

import (
	"context"

	"schoolgear/models"
)

// Analytics aggregation queries, admin-only reporting.

type TopRequestedRow struct {
	EquipmentName string `json:"equipmentName"`
	TotalBorrowed int64  `json:"totalUnitsBorrowed"`
}

// TopRequested ranks equipment by total quantity across all requests.
func (r *Repo) TopRequested(ctx context.Context, limit int) ([]TopRequestedRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []TopRequestedRow
	err := r.DB.WithContext(ctx).
		Table(models.LendingRequestTable+" AS r").
		Select("e.name AS equipment_name, SUM(r.quantity) AS total_borrowed").
		Joins("JOIN "+models.EquipmentTable+" e ON r.equipment_id = e.equipment_id").
		Group("e.equipment_id, e.name").
		Order("total_borrowed DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

type LoanDurationRow struct {
	EquipmentName string  `json:"equipmentName"`
	AvgDays       float64 `json:"avgLoanDurationDays"`
}

// AverageLoanDuration reports mean days between borrow and return per
// equipment, over returned requests only. Interval arithmetic differs between
// postgres and the sqlite driver the tests run on, so the expression is picked
// per dialect.
func (r *Repo) AverageLoanDuration(ctx context.Context) ([]LoanDurationRow, error) {
	avgDays := "AVG(EXTRACT(EPOCH FROM (r.return_date - r.borrow_date)) / 86400.0) AS avg_days"
	if r.DB.Dialector.Name() == "sqlite" {
		avgDays = "AVG(julianday(r.return_date) - julianday(r.borrow_date)) AS avg_days"
	}

	var rows []LoanDurationRow
	err := r.DB.WithContext(ctx).
		Table(models.LendingRequestTable+" AS r").
		Select("e.name AS equipment_name, "+avgDays).
		Joins("JOIN "+models.EquipmentTable+" e ON r.equipment_id = e.equipment_id").
		Where("r.status = ? AND r.borrow_date IS NOT NULL AND r.return_date IS NOT NULL", models.StatusReturned).
		Group("e.name").
		Order("avg_days DESC").
		Scan(&rows).Error
	return rows, err
}
