package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/shared"
	"github.com/sellerstats/backend/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements credential.Repository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// Upsert inserts the credential or overwrites ciphertext and active flag of
// the existing (user_id, title) row in one statement
func (r *GormCredentialRepository) Upsert(ctx context.Context, c *credential.Credential) error {
	model := models.CredentialModelFromDomain(c)
	model.ID = 0
	model.UpdatedAt = time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = model.UpdatedAt
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{"ciphertext", "is_active", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}

	c.ID = model.ID
	c.UpdatedAt = model.UpdatedAt
	return nil
}

// FindActiveByUser returns the most recently updated active credential
func (r *GormCredentialRepository) FindActiveByUser(ctx context.Context, userID int64) (*credential.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		Order("id DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTitle returns the active credential with the given title
func (r *GormCredentialRepository) FindByTitle(ctx context.Context, userID int64, title string) (*credential.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND title = ? AND is_active = ?", userID, title, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// DeactivateAllForUser clears the active flag of every active credential
func (r *GormCredentialRepository) DeactivateAllForUser(ctx context.Context, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CredentialModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeactivateOthers clears the active flag of every other credential of the user
func (r *GormCredentialRepository) DeactivateOthers(ctx context.Context, userID int64, keepTitle string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CredentialModel{}).
		Where("user_id = ? AND title <> ? AND is_active = ?", userID, keepTitle, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

// DeleteAllForUser removes every credential of the user
func (r *GormCredentialRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CredentialModel{})
	return result.RowsAffected, result.Error
}

// syncTargetRow is the scan target of ListSyncTargets
type syncTargetRow struct {
	CredentialID int64
	UserID       int64
	ExternalID   int64
	Title        string
	Ciphertext   string
}

// ListSyncTargets returns the active credentials of active users
func (r *GormCredentialRepository) ListSyncTargets(ctx context.Context) ([]credential.SyncTarget, error) {
	var rows []syncTargetRow
	if err := r.db.WithContext(ctx).
		Table("credentials AS c").
		Select("c.id AS credential_id, c.user_id, u.external_id, c.title, c.ciphertext").
		Joins("JOIN users AS u ON u.id = c.user_id").
		Where("c.is_active = ? AND u.is_active = ?", true, true).
		Order("c.user_id ASC").
		Order("c.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	targets := make([]credential.SyncTarget, len(rows))
	for i, row := range rows {
		targets[i] = credential.SyncTarget(row)
	}
	return targets, nil
}

// Ensure GormCredentialRepository implements credential.Repository
var _ credential.Repository = (*GormCredentialRepository)(nil)
