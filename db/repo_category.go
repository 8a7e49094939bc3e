package db

import (
	"context"

	"schoolgear/models"
)

// Equipment categories

func (r *Repo) CreateCategory(ctx context.Context, c *models.EquipmentCategory) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *Repo) ListCategories(ctx context.Context) ([]models.EquipmentCategory, error) {
	var cs []models.EquipmentCategory
	err := r.DB.WithContext(ctx).Order("category_name").Find(&cs).Error
	return cs, err
}

func (r *Repo) UpdateCategory(ctx context.Context, id uint, name, description string) error {
	res := r.DB.WithContext(ctx).Model(&models.EquipmentCategory{}).
		Where("category_id = ?", id).
		Updates(map[string]any{"category_name": name, "description": description})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.EquipmentCategory{}, "category_id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
