package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerstats/backend/internal/domain/shared"
	"github.com/sellerstats/backend/internal/domain/task"
	"github.com/sellerstats/backend/internal/infrastructure/persistence/models"
)

// GormTaskStatusRepository implements task.Repository using GORM
type GormTaskStatusRepository struct {
	db *gorm.DB
}

// NewGormTaskStatusRepository creates a new GormTaskStatusRepository
func NewGormTaskStatusRepository(db *gorm.DB) *GormTaskStatusRepository {
	return &GormTaskStatusRepository{db: db}
}

// Find returns the status of the user's stream
func (r *GormTaskStatusRepository) Find(ctx context.Context, userID int64, name task.Name) (*task.TaskStatus, error) {
	var model models.TaskStatusModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND task = ?", userID, string(name)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the status on (user_id, task)
func (r *GormTaskStatusRepository) Save(ctx context.Context, s *task.TaskStatus) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	model := models.TaskStatusModelFromDomain(s)
	model.ID = 0

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "cursor", "error", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}
	s.ID = model.ID
	return nil
}

// DeleteAllForUser removes every status of the user
func (r *GormTaskStatusRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.TaskStatusModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormTaskStatusRepository implements task.Repository
var _ task.Repository = (*GormTaskStatusRepository)(nil)
