package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sellerstats/backend/internal/domain/identity"
	"github.com/sellerstats/backend/internal/domain/shared"
	"github.com/sellerstats/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	user.ID = model.ID
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a user by external chat id
func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID int64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByID checks whether the user exists
func (r *GormUserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormDelegateRepository implements identity.DelegateRepository using GORM
type GormDelegateRepository struct {
	db *gorm.DB
}

// NewGormDelegateRepository creates a new GormDelegateRepository
func NewGormDelegateRepository(db *gorm.DB) *GormDelegateRepository {
	return &GormDelegateRepository{db: db}
}

// Save creates or updates the delegate
func (r *GormDelegateRepository) Save(ctx context.Context, d *identity.Delegate) error {
	model := models.DelegateModelFromDomain(d)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	d.ID = model.ID
	return nil
}

// FindByInviteToken finds a pending delegate by invite token
func (r *GormDelegateRepository) FindByInviteToken(ctx context.Context, token string) (*identity.Delegate, error) {
	var model models.DelegateModel
	if err := r.db.WithContext(ctx).
		Where("invite_token = ? AND accepted_at IS NULL", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByOwner returns every delegate of the owner
func (r *GormDelegateRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]identity.Delegate, error) {
	var rows []models.DelegateModel
	if err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	delegates := make([]identity.Delegate, len(rows))
	for i := range rows {
		delegates[i] = *rows[i].ToDomain()
	}
	return delegates, nil
}

// DeleteAllForOwner removes every delegate of the owner
func (r *GormDelegateRepository) DeleteAllForOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Delete(&models.DelegateModel{})
	return result.RowsAffected, result.Error
}

var (
	_ identity.UserRepository     = (*GormUserRepository)(nil)
	_ identity.DelegateRepository = (*GormDelegateRepository)(nil)
)
