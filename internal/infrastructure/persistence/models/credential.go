package models

import "github.com/sellerstats/backend/internal/domain/credential"

// CredentialModel is the persistence model for an encrypted API key
type CredentialModel struct {
	BaseModel
	UserID     int64  `gorm:"not null;uniqueIndex:uq_credentials_user_title,priority:1"`
	Title      string `gorm:"type:varchar(100);not null;uniqueIndex:uq_credentials_user_title,priority:2"`
	Ciphertext string `gorm:"type:text;not null"`
	IsActive   bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "credentials"
}

// ToDomain converts the persistence model to a domain Credential
func (m *CredentialModel) ToDomain() *credential.Credential {
	return &credential.Credential{
		ID:         m.ID,
		UserID:     m.UserID,
		Title:      m.Title,
		Ciphertext: m.Ciphertext,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// CredentialModelFromDomain creates a new persistence model from a domain Credential
func CredentialModelFromDomain(c *credential.Credential) *CredentialModel {
	return &CredentialModel{
		BaseModel:  BaseModel{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
		UserID:     c.UserID,
		Title:      c.Title,
		Ciphertext: c.Ciphertext,
		IsActive:   c.IsActive,
	}
}
