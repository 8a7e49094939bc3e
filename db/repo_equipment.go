package db

import (
	"context"
	"strings"

	"schoolgear/models"
)

// Equipment

func (r *Repo) CreateEquipment(ctx context.Context, e *models.Equipment) error {
	return translate(r.DB.WithContext(ctx).Create(e).Error)
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id uint) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.DB.WithContext(ctx).First(&e, "equipment_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

type EquipmentQuery struct {
	CategoryID    uint
	Search        string
	OnlyAvailable bool
}

func (r *Repo) ListEquipment(ctx context.Context, q EquipmentQuery) ([]models.Equipment, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Equipment{})
	if q.CategoryID != 0 {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if q.OnlyAvailable {
		tx = tx.Where("available_quantity > 0")
	}
	var items []models.Equipment
	err := tx.Order("name").Find(&items).Error
	return items, err
}

// UpdateEquipment replaces the editable fields. Admin edits may set the
// counters directly, so both bounds are validated here rather than trusted.
func (r *Repo) UpdateEquipment(ctx context.Context, id uint, name string, categoryID uint, total, available int) error {
	if total < 0 || available < 0 || available > total {
		return ErrValidation
	}
	res := r.DB.WithContext(ctx).Model(&models.Equipment{}).
		Where("equipment_id = ?", id).
		Updates(map[string]any{
			"name":               name,
			"category_id":        categoryID,
			"total_quantity":     total,
			"available_quantity": available,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteEquipment(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Equipment{}, "equipment_id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
