package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportLog: результат одного запуска импорта.
type ImportLog struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	PerformedBy string         `gorm:"size:255;not null;index" json:"performed_by"` // email
	FileName    string         `gorm:"size:255" json:"file_name"`
	Total       int            `json:"total"`
	Imported    int            `json:"imported"`
	Skipped     int            `json:"skipped"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (ImportLog) TableName() string { return "import_logs" }

func (l *ImportLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

type AppSetting struct {
	Key       string    `gorm:"size:100;primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AppSetting) TableName() string { return "app_settings" }

type AppSettingsLog struct {
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	ChangedBy  string    `gorm:"type:varchar(64);not null;index" json:"changed_by"`
	SettingKey string    `gorm:"size:100;not null" json:"setting_key"`
	OldValue   *string   `gorm:"type:text" json:"old_value"`
	NewValue   *string   `gorm:"type:text" json:"new_value"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AppSettingsLog) TableName() string { return "app_settings_logs" }

func (l *AppSettingsLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

// UserActionLog: действия администратора над пользователями и заявками.
type UserActionLog struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	PerformedBy string         `gorm:"type:varchar(64);not null;index" json:"performed_by"`
	TargetID    string         `gorm:"type:varchar(64)" json:"target_id"`
	Action      string         `gorm:"size:50;not null" json:"action"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (UserActionLog) TableName() string { return "user_action_logs" }

func (l *UserActionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

// UserTableSettings: настройки таблиц пользователя, уникальны по (user_id, table_id).
type UserTableSettings struct {
	ID               string         `gorm:"type:varchar(64);primaryKey" json:"-"`
	UserID           string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_table" json:"user_id"`
	TableID          string         `gorm:"size:100;not null;uniqueIndex:idx_user_table" json:"table_id"`
	ColumnOrder      datatypes.JSON `json:"column_order"`
	ColumnVisibility datatypes.JSON `json:"column_visibility"`
	Sorting          datatypes.JSON `json:"sorting"`
	ColumnSizing     datatypes.JSON `json:"column_sizing"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (UserTableSettings) TableName() string { return "user_table_settings" }

func (s *UserTableSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}
