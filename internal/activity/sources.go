package activity

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pm-dashboard/internal/models"
)

// ImportSource: import_logs по email исполнителя
type ImportSource struct{ DB *gorm.DB }

func (ImportSource) Name() string { return "import_logs" }

func (s ImportSource) Recent(ctx context.Context, actor Actor, limit int) ([]Item, error) {
	var logs []models.ImportLog
	err := s.DB.WithContext(ctx).
		Where("performed_by = ?", actor.Email).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(logs))
	for _, l := range logs {
		items = append(items, Item{
			ID:          l.ID,
			Source:      "import",
			Action:      "import",
			Description: fmt.Sprintf("Imported %d of %d records from %s", l.Imported, l.Total, l.FileName),
			Timestamp:   l.CreatedAt,
		})
	}
	return items, nil
}

// SettingsSource: app_settings_logs по id того, кто менял
type SettingsSource struct{ DB *gorm.DB }

func (SettingsSource) Name() string { return "app_settings_logs" }

func (s SettingsSource) Recent(ctx context.Context, actor Actor, limit int) ([]Item, error) {
	var logs []models.AppSettingsLog
	err := s.DB.WithContext(ctx).
		Where("changed_by = ?", actor.ID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(logs))
	for _, l := range logs {
		items = append(items, Item{
			ID:          l.ID,
			Source:      "settings",
			Action:      "setting_changed",
			Description: fmt.Sprintf("Changed setting %s", l.SettingKey),
			Timestamp:   l.CreatedAt,
		})
	}
	return items, nil
}

// UserActionSource: user_action_logs по id исполнителя
type UserActionSource struct{ DB *gorm.DB }

func (UserActionSource) Name() string { return "user_action_logs" }

func (s UserActionSource) Recent(ctx context.Context, actor Actor, limit int) ([]Item, error) {
	var logs []models.UserActionLog
	err := s.DB.WithContext(ctx).
		Where("performed_by = ?", actor.ID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(logs))
	for _, l := range logs {
		items = append(items, Item{
			ID:          l.ID,
			Source:      "users",
			Action:      l.Action,
			Description: describeUserAction(l),
			Timestamp:   l.CreatedAt,
		})
	}
	return items, nil
}

func describeUserAction(l models.UserActionLog) string {
	switch l.Action {
	case "approve_user":
		return "Approved user " + l.TargetID
	case "set_role":
		return "Changed role of user " + l.TargetID
	case "approve_request":
		return "Processed access request " + l.TargetID
	case "create_account":
		return "Created account " + l.TargetID
	default:
		return l.Action
	}
}

// LookupActor: email пользователя по id из таблицы users
func LookupActor(db *gorm.DB) ActorLookup {
	return func(ctx context.Context, userID string) (Actor, error) {
		var identity models.Identity
		if err := db.WithContext(ctx).First(&identity, "id = ?", userID).Error; err != nil {
			return Actor{}, err
		}
		return Actor{ID: identity.ID, Email: identity.Email}, nil
	}
}
