package database

import (
	"context"
	"errors"
	"time"

	"nailsxlauren/internal/domain"
	"nailsxlauren/internal/metrics"
	apperrors "nailsxlauren/pkg/errors"

	"gorm.io/gorm"
)

// UserRepository reads and writes admin accounts.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername loads an admin by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "user_by_username", "username = ?", username)
}

// FindByID loads an admin by id.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(ctx, "user_by_id", "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, op, cond string, arg any) (*domain.User, error) {
	start := time.Now()
	var user domain.User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	metrics.RecordDBQuery(op, time.Since(start), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to get user", err)
	}
	return &user, nil
}

// TouchLastLogin stamps the login time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.LastLogin = &now
	return r.db.WithContext(ctx).Model(user).Update("last_login", now).Error
}

// Upsert creates the admin or replaces its password hash and reactivates it.
// The boolean reports whether a new row was created.
func (r *UserRepository) Upsert(ctx context.Context, username, hashedPassword string) (*domain.User, bool, error) {
	existing, err := r.FindByUsername(ctx, username)
	switch {
	case err == nil:
		existing.HashedPassword = hashedPassword
		existing.IsActive = true
		if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to update user", err)
		}
		return existing, false, nil
	case apperrors.IsNotFound(err):
		user := &domain.User{Username: username, HashedPassword: hashedPassword, IsActive: true}
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to create user", err)
		}
		return user, true, nil
	default:
		return nil, false, err
	}
}

// SetActive toggles whether the admin may log in.
func (r *UserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("is_active", active).Error
}
