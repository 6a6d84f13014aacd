package models

import (
	"time"

	"github.com/sellerstats/backend/internal/domain/task"
)

// TaskStatusModel is the persistence model for per-stream sync status
type TaskStatusModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_task_statuses_user_task,priority:1"`
	Task      string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_task_statuses_user_task,priority:2"`
	Status    string    `gorm:"type:varchar(16);not null"`
	Cursor    *time.Time
	Error     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaskStatusModel) TableName() string {
	return "task_statuses"
}

// ToDomain converts the persistence model to a domain TaskStatus
func (m *TaskStatusModel) ToDomain() *task.TaskStatus {
	s := &task.TaskStatus{
		ID:        m.ID,
		UserID:    m.UserID,
		Task:      task.Name(m.Task),
		Status:    task.Status(m.Status),
		Error:     m.Error,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Cursor != nil {
		s.Cursor = *m.Cursor
	}
	return s
}

// TaskStatusModelFromDomain creates a new persistence model from a domain TaskStatus
func TaskStatusModelFromDomain(s *task.TaskStatus) *TaskStatusModel {
	m := &TaskStatusModel{
		ID:        s.ID,
		UserID:    s.UserID,
		Task:      string(s.Task),
		Status:    string(s.Status),
		Error:     s.Error,
		UpdatedAt: s.UpdatedAt,
	}
	if !s.Cursor.IsZero() {
		cursor := s.Cursor
		m.Cursor = &cursor
	}
	return m
}
