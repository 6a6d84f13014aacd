package models

import (
	"time"

	"github.com/sellerstats/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity
type UserModel struct {
	BaseModel
	ExternalID int64  `gorm:"not null;uniqueIndex:uq_users_external_id"`
	Username   string `gorm:"type:varchar(64)"`
	Locale     string `gorm:"type:varchar(8);not null"`
	IsActive   bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Username:   m.Username,
		Locale:     m.Locale,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		BaseModel:  BaseModel{ID: u.ID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt},
		ExternalID: u.ExternalID,
		Username:   u.Username,
		Locale:     u.Locale,
		IsActive:   u.IsActive,
	}
}

// DelegateModel is the persistence model for delegate links. Pending invites
// have no member yet, so the member column is nullable and the unique index
// only constrains accepted delegates.
type DelegateModel struct {
	BaseModel
	OwnerUserID      int64      `gorm:"not null;uniqueIndex:uq_delegates_owner_member,priority:1"`
	MemberExternalID *int64     `gorm:"uniqueIndex:uq_delegates_owner_member,priority:2"`
	Username         string     `gorm:"type:varchar(64)"`
	InviteToken      *string    `gorm:"type:varchar(64);index"`
	AcceptedAt       *time.Time
}

// TableName returns the table name for GORM
func (DelegateModel) TableName() string {
	return "delegates"
}

// ToDomain converts the persistence model to a domain Delegate
func (m *DelegateModel) ToDomain() *identity.Delegate {
	d := &identity.Delegate{
		ID:          m.ID,
		OwnerUserID: m.OwnerUserID,
		Username:    m.Username,
		AcceptedAt:  m.AcceptedAt,
		CreatedAt:   m.CreatedAt,
	}
	if m.MemberExternalID != nil {
		d.MemberExternalID = *m.MemberExternalID
	}
	if m.InviteToken != nil {
		d.InviteToken = *m.InviteToken
	}
	return d
}

// DelegateModelFromDomain creates a new persistence model from a domain Delegate
func DelegateModelFromDomain(d *identity.Delegate) *DelegateModel {
	m := &DelegateModel{
		BaseModel:   BaseModel{ID: d.ID, CreatedAt: d.CreatedAt, UpdatedAt: time.Now()},
		OwnerUserID: d.OwnerUserID,
		Username:    d.Username,
		AcceptedAt:  d.AcceptedAt,
	}
	if d.MemberExternalID != 0 {
		member := d.MemberExternalID
		m.MemberExternalID = &member
	}
	if d.InviteToken != "" {
		token := d.InviteToken
		m.InviteToken = &token
	}
	return m
}
