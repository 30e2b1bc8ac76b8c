package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Notes     []Note    `gorm:"foreignKey:FolderID" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (f *Folder) FromJSON(data []byte) error {
	return json.Unmarshal(data, f)
}

func (f *Folder) ToJSON() ([]byte, error) {
	return json.Marshal(f)
}
