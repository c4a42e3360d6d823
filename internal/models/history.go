package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// HistoryEntry: запись журнала изменений сущности. Только добавляется.
type HistoryEntry struct {
	ID         string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	EntityType string         `gorm:"size:50;not null;index:idx_history_entity" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(64);not null;index:idx_history_entity" json:"entity_id"`
	UserID     *string        `gorm:"type:varchar(64)" json:"user_id"`
	ActionType string         `gorm:"size:50;not null" json:"action_type"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (HistoryEntry) TableName() string { return "project_history" }

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = NewID()
	}
	return nil
}
