package services

import (
	"errors"

	"github.com/SuperB747/emotion-notepad-sub000/broker"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FolderServiceInterface interface {
	CreateFolder(db *database.Database, folderData map[string]interface{}) (models.Folder, error)
	GetFolderById(db *database.Database, id string) (models.Folder, error)
	UpdateFolder(db *database.Database, id string, updatedData map[string]interface{}) (models.Folder, error)
	DeleteFolder(db *database.Database, id string) error
	GetFolders(db *database.Database, userID string) ([]models.Folder, error)
}

type FolderService struct{}

func (s *FolderService) CreateFolder(db *database.Database, folderData map[string]interface{}) (models.Folder, error) {
	name, ok := folderData["name"].(string)
	if !ok || name == "" {
		return models.Folder{}, errors.New("name is required")
	}

	userIDStr, ok := folderData["user_id"].(string)
	if !ok {
		return models.Folder{}, errors.New("user_id must be a string")
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Folder{}, tx.Error
	}

	folder := models.Folder{
		ID:     uuid.New(),
		UserID: uuid.Must(uuid.Parse(userIDStr)),
		Name:   name,
	}

	if err := tx.Create(&folder).Error; err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	event, err := models.NewEvent(
		string(broker.FolderCreated),
		"folder",
		"create",
		userIDStr,
		map[string]interface{}{
			"folder_id": folder.ID.String(),
			"user_id":   folder.UserID.String(),
			"name":      folder.Name,
		},
	)
	if err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	return folder, nil
}

func (s *FolderService) GetFolderById(db *database.Database, id string) (models.Folder, error) {
	var folder models.Folder
	if err := db.DB.First(&folder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, ErrFolderNotFound
		}
		return models.Folder{}, err
	}
	return folder, nil
}

func (s *FolderService) UpdateFolder(db *database.Database, id string, updatedData map[string]interface{}) (models.Folder, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Folder{}, tx.Error
	}

	var folder models.Folder
	if err := tx.First(&folder, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, ErrFolderNotFound
		}
		return models.Folder{}, err
	}

	if name, ok := updatedData["name"].(string); ok && name != "" {
		folder.Name = name
	}

	if err := tx.Save(&folder).Error; err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	event, err := models.NewEvent(
		string(broker.FolderUpdated),
		"folder",
		"update",
		folder.UserID.String(),
		map[string]interface{}{
			"folder_id": folder.ID.String(),
			"user_id":   folder.UserID.String(),
			"name":      folder.Name,
		},
	)
	if err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Folder{}, err
	}

	return folder, nil
}

// DeleteFolder removes a folder. Member notes are reassigned to the root
// scope in a single batch update inside the same transaction, and the
// folder's layout document is deleted with it.
func (s *FolderService) DeleteFolder(db *database.Database, id string) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var folder models.Folder
	if err := tx.First(&folder, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFolderNotFound
		}
		return err
	}

	if err := tx.Model(&models.Note{}).Where("folder_id = ?", folder.ID).
		Update("folder_id", nil).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("scope_key = ? AND user_id = ?", folder.ID.String(), folder.UserID).
		Delete(&models.Layout{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&folder).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := models.NewEvent(
		string(broker.FolderDeleted),
		"folder",
		"delete",
		folder.UserID.String(),
		map[string]interface{}{
			"folder_id": folder.ID.String(),
			"user_id":   folder.UserID.String(),
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

func (s *FolderService) GetFolders(db *database.Database, userID string) ([]models.Folder, error) {
	var folders []models.Folder
	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// NewFolderService creates a new instance of FolderService
func NewFolderService() FolderServiceInterface {
	return &FolderService{}
}

var FolderServiceInstance FolderServiceInterface
