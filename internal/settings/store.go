package settings

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pm-dashboard/internal/models"
)

type Prefs struct {
	ColumnOrder      datatypes.JSON `json:"column_order"`
	ColumnVisibility datatypes.JSON `json:"column_visibility"`
	Sorting          datatypes.JSON `json:"sorting"`
	ColumnSizing     datatypes.JSON `json:"column_sizing"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get: nil, nil, если настроек для таблицы ещё нет
func (s *Store) Get(ctx context.Context, userID, tableID string) (*models.UserTableSettings, error) {
	var row models.UserTableSettings
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND table_id = ?", userID, tableID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert: одна строка на (userID, tableID)
func (s *Store) Upsert(ctx context.Context, userID, tableID string, p Prefs) error {
	row := models.UserTableSettings{
		UserID:           userID,
		TableID:          tableID,
		ColumnOrder:      p.ColumnOrder,
		ColumnVisibility: p.ColumnVisibility,
		Sorting:          p.Sorting,
		ColumnSizing:     p.ColumnSizing,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "table_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"column_order", "column_visibility", "sorting", "column_sizing", "updated_at",
		}),
	}).Create(&row).Error
}
