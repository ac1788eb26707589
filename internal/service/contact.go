package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/transport"
)

type ContactService struct {
	Repo *repo.GormRepo
}

func (s *ContactService) List(ctx context.Context, userID uint) ([]models.Contact, error) {
	return s.Repo.ListContacts(ctx, userID)
}

func (s *ContactService) Get(ctx context.Context, userID, id uint) (*models.Contact, error) {
	c, err := s.Repo.GetContact(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, MsgContactNotFound, err)
	}
	return c, err
}

func (s *ContactService) Create(ctx context.Context, userID uint, in transport.ContactInput) (*models.Contact, error) {
	if err := transport.Validate(in); err != nil {
		return nil, newError(ErrValidation, err.Error(), err)
	}
	c := &models.Contact{
		UserID:    userID,
		City:      in.City,
		Street:    in.Street,
		House:     in.House,
		Structure: in.Structure,
		Building:  in.Building,
		Apartment: in.Apartment,
		Phone:     in.Phone,
	}
	if err := s.Repo.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, userID, id uint, patch transport.ContactPatch) (*models.Contact, error) {
	if err := transport.Validate(patch); err != nil {
		return nil, newError(ErrValidation, err.Error(), err)
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, newError(ErrValidation, MsgMissingArgs, nil)
	}

	n, err := s.Repo.UpdateContact(ctx, userID, id, fields)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, newError(ErrNotFound, MsgContactNotFound, nil)
	}
	return s.Get(ctx, userID, id)
}

func (s *ContactService) Delete(ctx context.Context, userID, id uint) error {
	n, err := s.Repo.DeleteContacts(ctx, userID, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return newError(ErrNotFound, MsgContactNotFound, nil)
	}
	return nil
}
