package task

import (
	"context"
	"time"
)

// Name identifies one upstream stream synced per user
type Name string

const (
	NameOrders Name = "orders"
	NameSales  Name = "sales"
	NameStocks Name = "stocks"
)

// Status is the state of the last sync of a stream
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// DefaultLookback is how far back a stream with no cursor starts
const DefaultLookback = 24 * time.Hour

// TaskStatus records the progress of one stream for one user. Cursor is the
// sinceCursor passed to the next fetch.
type TaskStatus struct {
	ID        int64
	UserID    int64
	Task      Name
	Status    Status
	Cursor    time.Time
	Error     string
	UpdatedAt time.Time
}

// CursorOr returns the stored cursor, or now minus DefaultLookback when the
// stream has never completed
func (s *TaskStatus) CursorOr(now time.Time) time.Time {
	if s == nil || s.Cursor.IsZero() {
		return now.Add(-DefaultLookback)
	}
	return s.Cursor
}

// Complete advances the cursor and clears any previous error
func (s *TaskStatus) Complete(cursor time.Time) {
	s.Status = StatusDone
	s.Cursor = cursor
	s.Error = ""
	s.UpdatedAt = time.Now()
}

// Fail records the error and keeps the cursor so the next pass retries
func (s *TaskStatus) Fail(err error) {
	s.Status = StatusFailed
	if err != nil {
		s.Error = err.Error()
	}
	s.UpdatedAt = time.Now()
}

// Repository defines the persistence operations for task status
type Repository interface {
	// Find returns the status of the user's stream, or shared.ErrNotFound
	Find(ctx context.Context, userID int64, task Name) (*TaskStatus, error)

	// Save upserts the status on (user_id, task)
	Save(ctx context.Context, s *TaskStatus) error

	// DeleteAllForUser removes every status of the user
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}
