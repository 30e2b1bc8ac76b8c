package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RootScope is the layout scope key for unfiled notes; every other scope
// key is a folder id.
const RootScope = "root"

// Layout is the persisted board arrangement for one scope: a note-id →
// position map stored as JSON, the OCD (zero-rotation) flag and a display
// name. One row per (user, scope), upserted wholesale on save.
type Layout struct {
	ScopeKey  string         `gorm:"primaryKey" json:"scope_key"`
	UserID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name      string         `json:"name"`
	Positions datatypes.JSON `gorm:"type:jsonb" json:"positions"`
	OCDMode   bool           `gorm:"default:false" json:"ocd_mode"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (l *Layout) FromJSON(data []byte) error {
	return json.Unmarshal(data, l)
}

func (l *Layout) ToJSON() ([]byte, error) {
	return json.Marshal(l)
}
