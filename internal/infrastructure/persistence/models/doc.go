// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by every table
//   - identity.go: users and delegates
//   - credential.go: encrypted marketplace credentials
//   - marketplace.go: orders, sales and stock snapshots
//   - subscription.go: subscription ledger
//   - task.go: per-stream sync status
//
// Unique indexes declared in tags mirror the SQL migrations so AutoMigrate
// in tests produces the same conflict targets.
package models
