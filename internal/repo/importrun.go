package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

func (r *GormRepo) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	return r.DB.WithContext(ctx).Omit("Shop").Create(run).Error
}

func (r *GormRepo) SaveImportRun(ctx context.Context, run *models.ImportRun) error {
	return r.DB.WithContext(ctx).Omit("Shop").Save(run).Error
}

func (r *GormRepo) ListImportRuns(ctx context.Context, userID uint, offset, limit int) ([]models.ImportRun, int64, error) {
	var total int64
	q := r.DB.WithContext(ctx).Model(&models.ImportRun{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.ImportRun
	if err := q.Order("started_at DESC, id DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
