package repo

import (
	"context"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

func (r *GormRepo) CreateContact(ctx context.Context, c *models.Contact) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) ListContacts(ctx context.Context, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *GormRepo) GetContact(ctx context.Context, userID, id uint) (*models.Contact, error) {
	var c models.Contact
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) UpdateContact(ctx context.Context, userID, id uint, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Model(&models.Contact{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteContacts(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Contact{})
	return res.RowsAffected, res.Error
}
