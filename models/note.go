package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NoteColor is the optional color tag on a note.
type NoteColor string

const (
	ColorYellow   NoteColor = "yellow"
	ColorPink     NoteColor = "pink"
	ColorMint     NoteColor = "mint"
	ColorSky      NoteColor = "sky"
	ColorLavender NoteColor = "lavender"
	ColorPeach    NoteColor = "peach"
	ColorCoral    NoteColor = "coral"
	ColorLime     NoteColor = "lime"
	ColorGray     NoteColor = "gray"
	ColorCream    NoteColor = "cream"

	DefaultColor = ColorYellow
)

var noteColors = map[NoteColor]bool{
	ColorYellow: true, ColorPink: true, ColorMint: true, ColorSky: true,
	ColorLavender: true, ColorPeach: true, ColorCoral: true,
	ColorLime: true, ColorGray: true, ColorCream: true,
}

// Valid reports whether c is a known color tag.
func (c NoteColor) Valid() bool {
	return noteColors[c]
}

// Normalize returns c, or the default color when c is unknown or empty.
func (c NoteColor) Normalize() NoteColor {
	if c.Valid() {
		return c
	}
	return DefaultColor
}

type Note struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	FolderID  *uuid.UUID `gorm:"type:uuid" json:"folder_id,omitempty"`
	Title     string     `gorm:"not null" json:"title"`
	Body      string     `json:"body"`
	Color     NoteColor  `gorm:"default:'yellow'" json:"color"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (n *Note) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}

func (n *Note) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// ScopeKey returns the layout scope this note belongs to: its folder id,
// or the root scope for unfiled notes.
func (n *Note) ScopeKey() string {
	if n.FolderID == nil {
		return RootScope
	}
	return n.FolderID.String()
}
