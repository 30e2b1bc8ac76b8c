package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/SuperB747/emotion-notepad-sub000/board"
	"github.com/SuperB747/emotion-notepad-sub000/broker"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LayoutServiceInterface interface {
	GetLayout(db *database.Database, userID uuid.UUID, scopeKey string) (models.Layout, error)
	SetLayout(db *database.Database, userID uuid.UUID, scopeKey, name string, positions map[string]board.Position, ocdMode bool) (models.Layout, error)
	PatchPositions(db *database.Database, userID uuid.UUID, scopeKey string, updates map[string]board.Position) error
	DeleteLayout(db *database.Database, userID uuid.UUID, scopeKey string) error
}

type LayoutService struct{}

func (s *LayoutService) GetLayout(db *database.Database, userID uuid.UUID, scopeKey string) (models.Layout, error) {
	var layout models.Layout
	err := db.DB.First(&layout, "scope_key = ? AND user_id = ?", scopeKey, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Layout{}, ErrLayoutNotFound
		}
		return models.Layout{}, err
	}
	return layout, nil
}

// SetLayout upserts the layout document for one scope, overwriting the
// whole position map.
func (s *LayoutService) SetLayout(db *database.Database, userID uuid.UUID, scopeKey, name string, positions map[string]board.Position, ocdMode bool) (models.Layout, error) {
	data, err := json.Marshal(positions)
	if err != nil {
		return models.Layout{}, err
	}

	layout := models.Layout{
		ScopeKey:  scopeKey,
		UserID:    userID,
		Name:      name,
		Positions: data,
		OCDMode:   ocdMode,
		UpdatedAt: time.Now().UTC(),
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Layout{}, tx.Error
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope_key"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "positions", "ocd_mode", "updated_at"}),
	}).Create(&layout).Error; err != nil {
		tx.Rollback()
		return models.Layout{}, err
	}

	event, err := models.NewEvent(
		string(broker.LayoutUpdated),
		"layout",
		"update",
		userID.String(),
		map[string]interface{}{
			"scope_key": scopeKey,
			"user_id":   userID.String(),
			"ocd_mode":  ocdMode,
			"count":     len(positions),
		},
	)
	if err != nil {
		tx.Rollback()
		return models.Layout{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Layout{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Layout{}, err
	}

	return layout, nil
}

// PatchPositions merges a batch of position updates into the stored
// layout document. The scope's layout is created on first patch if it
// does not exist yet.
func (s *LayoutService) PatchPositions(db *database.Database, userID uuid.UUID, scopeKey string, updates map[string]board.Position) error {
	if len(updates) == 0 {
		return nil
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var layout models.Layout
	err := tx.First(&layout, "scope_key = ? AND user_id = ?", scopeKey, userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return err
	}

	positions := make(map[string]board.Position)
	if len(layout.Positions) > 0 {
		if err := json.Unmarshal(layout.Positions, &positions); err != nil {
			tx.Rollback()
			return err
		}
	}
	for id, pos := range updates {
		positions[id] = pos
	}

	data, err := json.Marshal(positions)
	if err != nil {
		tx.Rollback()
		return err
	}

	layout.ScopeKey = scopeKey
	layout.UserID = userID
	layout.Positions = data
	layout.UpdatedAt = time.Now().UTC()

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope_key"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"positions", "updated_at"}),
	}).Create(&layout).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *LayoutService) DeleteLayout(db *database.Database, userID uuid.UUID, scopeKey string) error {
	result := db.DB.Where("scope_key = ? AND user_id = ?", scopeKey, userID).Delete(&models.Layout{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLayoutNotFound
	}
	return nil
}

// NewLayoutService creates a new instance of LayoutService
func NewLayoutService() LayoutServiceInterface {
	return &LayoutService{}
}

var LayoutServiceInstance LayoutServiceInterface
