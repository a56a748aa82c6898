package models

import (
	"time"
)

type MigrationStatus string

const (
	MigrationStatusDraft     MigrationStatus = "DRAFT"
	MigrationStatusRunning   MigrationStatus = "RUNNING"
	MigrationStatusCompleted MigrationStatus = "COMPLETED"
	MigrationStatusFailed    MigrationStatus = "FAILED"
)

// PromptEntry is one prompt inside a migration. Migrated stays empty until
// the completion action rewrites the entry; an empty string always means
// "not migrated yet", never a valid rewrite.
type PromptEntry struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Migrated string `json:"migrated,omitempty"`
}

type Migration struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SourceModel  string          `json:"sourceModel"`
	TargetModel  string          `json:"targetModel"`
	Notes        string          `json:"notes,omitempty"`
	Status       MigrationStatus `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	Prompts      []PromptEntry   `json:"prompts"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}
