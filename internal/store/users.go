package store

import (
	"context"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return apperr.FromStore(s.conn(ctx).Create(u).Error, "user")
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

// EmailTaken reports whether another user already owns email.
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&n).Error
	if err != nil {
		return false, apperr.FromStore(err, "user")
	}
	return n > 0, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return users, nil
}

// UpdateUser writes the given columns only.
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	res := s.conn(ctx).Model(&models.User{ID: id}).Updates(fields)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user %d not found", id)
	}
	return nil
}

// DeleteUser removes the user with all of its accounts and their
// transactions. Must run inside Tx.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	var accountIDs []uint
	if err := s.conn(ctx).Model(&models.BankAccount{}).Where("user_id = ?", id).Order("id").Pluck("id", &accountIDs).Error; err != nil {
		return apperr.FromStore(err, "bank account")
	}
	if len(accountIDs) > 0 {
		if _, err := s.LockAccounts(ctx, accountIDs...); err != nil {
			return err
		}
		if err := s.deleteChildren(ctx, accountIDs); err != nil {
			return err
		}
		if err := s.conn(ctx).Where("id IN ?", accountIDs).Delete(&models.BankAccount{}).Error; err != nil {
			return apperr.FromStore(err, "bank account")
		}
	}
	res := s.conn(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user %d not found", id)
	}
	return nil
}
