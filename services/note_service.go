package services

import (
	"errors"

	"github.com/SuperB747/emotion-notepad-sub000/broker"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteServiceInterface interface {
	CreateNote(db *database.Database, noteData map[string]interface{}) (models.Note, error)
	GetNoteById(db *database.Database, id string) (models.Note, error)
	UpdateNote(db *database.Database, id string, updatedData map[string]interface{}) (models.Note, error)
	DeleteNote(db *database.Database, id string) error
	GetNotes(db *database.Database, params map[string]interface{}) ([]models.Note, error)
}

type NoteService struct{}

func (s *NoteService) CreateNote(db *database.Database, noteData map[string]interface{}) (models.Note, error) {
	title, ok := noteData["title"].(string)
	if !ok || title == "" {
		return models.Note{}, errors.New("title is required")
	}

	userIDStr, ok := noteData["user_id"].(string)
	if !ok {
		return models.Note{}, errors.New("user_id must be a string")
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	var userCount int64
	if err := tx.Model(&models.User{}).Where("id = ?", userIDStr).Count(&userCount).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}
	if userCount == 0 {
		tx.Rollback()
		return models.Note{}, ErrUserNotFound
	}

	note := models.Note{
		ID:     uuid.New(),
		UserID: uuid.Must(uuid.Parse(userIDStr)),
		Title:  title,
	}

	if body, ok := noteData["body"].(string); ok {
		note.Body = body
	}

	// Unknown color tags fall back to the default rather than failing.
	if color, ok := noteData["color"].(string); ok {
		note.Color = models.NoteColor(color).Normalize()
	} else {
		note.Color = models.DefaultColor
	}

	if folderID, ok := noteData["folder_id"].(string); ok && folderID != "" {
		var folderCount int64
		if err := tx.Model(&models.Folder{}).Where("id = ?", folderID).Count(&folderCount).Error; err != nil {
			tx.Rollback()
			return models.Note{}, err
		}
		if folderCount == 0 {
			tx.Rollback()
			return models.Note{}, ErrFolderNotFound
		}
		fid := uuid.Must(uuid.Parse(folderID))
		note.FolderID = &fid
	}

	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	event, err := models.NewEvent(
		string(broker.NoteCreated),
		"note",
		"create",
		userIDStr,
		map[string]interface{}{
			"note_id":    note.ID.String(),
			"user_id":    note.UserID.String(),
			"scope_key":  note.ScopeKey(),
			"title":      note.Title,
			"color":      string(note.Color),
			"created_at": note.CreatedAt,
		},
	)
	if err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	return note, nil
}

func (s *NoteService) UpdateNote(db *database.Database, id string, updatedData map[string]interface{}) (models.Note, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	var note models.Note
	if err := tx.First(&note, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}

	if title, ok := updatedData["title"].(string); ok {
		note.Title = title
	}
	if body, ok := updatedData["body"].(string); ok {
		note.Body = body
	}
	if color, ok := updatedData["color"].(string); ok {
		note.Color = models.NoteColor(color).Normalize()
	}
	if folderID, ok := updatedData["folder_id"]; ok {
		switch v := folderID.(type) {
		case string:
			if v == "" {
				note.FolderID = nil
			} else {
				fid, err := uuid.Parse(v)
				if err != nil {
					tx.Rollback()
					return models.Note{}, ErrInvalidInput
				}
				note.FolderID = &fid
			}
		case nil:
			note.FolderID = nil
		}
	}

	if err := tx.Save(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	actorID, _ := updatedData["user_id"].(string)
	event, err := models.NewEvent(
		string(broker.NoteUpdated),
		"note",
		"update",
		actorID,
		map[string]interface{}{
			"note_id":    note.ID.String(),
			"user_id":    note.UserID.String(),
			"scope_key":  note.ScopeKey(),
			"title":      note.Title,
			"color":      string(note.Color),
			"updated_at": note.UpdatedAt,
		},
	)
	if err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	return note, nil
}

func (s *NoteService) GetNoteById(db *database.Database, id string) (models.Note, error) {
	var note models.Note
	if err := db.DB.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteService) DeleteNote(db *database.Database, id string) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var note models.Note
	if err := tx.First(&note, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	if err := tx.Delete(&note).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := models.NewEvent(
		string(broker.NoteDeleted),
		"note",
		"delete",
		note.UserID.String(),
		map[string]interface{}{
			"note_id":   note.ID.String(),
			"user_id":   note.UserID.String(),
			"scope_key": note.ScopeKey(),
		},
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// GetNotes lists notes filtered by the given params. Results are ordered
// by creation time, newest first; this is the canonical display order.
func (s *NoteService) GetNotes(db *database.Database, params map[string]interface{}) ([]models.Note, error) {
	var notes []models.Note
	query := db.DB.Order("created_at DESC")

	if userID, ok := params["user_id"].(string); ok && userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	if folderID, ok := params["folder_id"].(string); ok {
		if folderID == models.RootScope || folderID == "" {
			query = query.Where("folder_id IS NULL")
		} else {
			query = query.Where("folder_id = ?", folderID)
		}
	}

	if title, ok := params["title"].(string); ok && title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}

	if err := query.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// NewNoteService creates a new instance of NoteService
func NewNoteService() NoteServiceInterface {
	return &NoteService{}
}

var NoteServiceInstance NoteServiceInterface
