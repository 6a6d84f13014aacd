package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_CursorOr(t *testing.T) {
	now := time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)

	var missing *TaskStatus
	assert.Equal(t, now.Add(-DefaultLookback), missing.CursorOr(now))
	assert.Equal(t, now.Add(-DefaultLookback), (&TaskStatus{}).CursorOr(now))

	cursor := now.Add(-time.Hour)
	assert.Equal(t, cursor, (&TaskStatus{Cursor: cursor}).CursorOr(now))
}

func TestTaskStatus_CompleteAndFail(t *testing.T) {
	cursor := time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)
	s := &TaskStatus{UserID: 1, Task: NameOrders}

	s.Fail(errors.New("boom"))
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, "boom", s.Error)
	assert.True(t, s.Cursor.IsZero())

	s.Complete(cursor)
	assert.Equal(t, StatusDone, s.Status)
	assert.Empty(t, s.Error)
	assert.Equal(t, cursor, s.Cursor)
}
