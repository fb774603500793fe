package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
)

// Identity is what a validated access token tells us about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Sync provisions the user for a token subject on first sight and refreshes
// profile fields when the token carries newer values.
func (s *UserStore) Sync(ctx context.Context, id Identity) (*models.User, error) {
	if id.Subject == "" {
		return nil, apperr.New(apperr.Unauthorized, "No token subject found")
	}

	user, err := s.sync(ctx, id)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request created the row first.
		user, err = s.sync(ctx, id)
	}
	if err != nil {
		return nil, writeErr(err, "sync user", "User already exists")
	}
	return user, nil
}

func (s *UserStore) sync(ctx context.Context, id Identity) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("subject = ?", id.Subject).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				Subject:  id.Subject,
				FullName: id.Name,
				Role:     models.RoleViewer,
				IsActive: true,
			}
			if id.Email != "" {
				email := id.Email
				user.Email = &email
			}
			if role := models.UserRole(id.Role); role.Valid() {
				user.Role = role
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		changed := false
		if id.Email != "" && (user.Email == nil || *user.Email != id.Email) {
			email := id.Email
			user.Email = &email
			changed = true
		}
		if id.Name != "" && user.FullName != id.Name {
			user.FullName = id.Name
			changed = true
		}
		if !changed {
			return nil
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetActive enables or disables the user provisioned for subject. A disabled
// user keeps its projects but every authenticated request is refused.
func (s *UserStore) SetActive(ctx context.Context, subject string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("subject = ?", subject).Update("is_active", active)
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}
	return nil
}
