package routes

import (
	"errors"
	"net/http"

	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/services"

	"github.com/gin-gonic/gin"
)

func RegisterFolderRoutes(group *gin.RouterGroup, db *database.Database, folderService services.FolderServiceInterface) {
	group.GET("/folders", func(c *gin.Context) { GetFolders(c, db, folderService) })
	group.POST("/folders", func(c *gin.Context) { CreateFolder(c, db, folderService) })

	group.GET("/folders/:id", func(c *gin.Context) { GetFolderById(c, db, folderService) })
	group.PUT("/folders/:id", func(c *gin.Context) { UpdateFolder(c, db, folderService) })
	group.DELETE("/folders/:id", func(c *gin.Context) { DeleteFolder(c, db, folderService) })
}

func CreateFolder(c *gin.Context, db *database.Database, folderService services.FolderServiceInterface) {
	var folderData map[string]interface{}
	if err := c.ShouldBindJSON(&folderData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	folderData["user_id"] = userID.String()

	createdFolder, err := folderService.CreateFolder(db, folderData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, createdFolder)
}

func GetFolderById(c *gin.Context, db *database.Database, folderService services.FolderServiceInterface) {
	id := c.Param("id")
	folder, err := folderService.GetFolderById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrFolderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if folder.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this folder"})
		return
	}

	c.JSON(http.StatusOK, folder)
}

func UpdateFolder(c *gin.Context, db *database.Database, folderService services.FolderServiceInterface) {
	id := c.Param("id")
	var folderData map[string]interface{}
	if err := c.ShouldBindJSON(&folderData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updatedFolder, err := folderService.UpdateFolder(db, id, folderData)
	if err != nil {
		if errors.Is(err, services.ErrFolderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updatedFolder)
}

func DeleteFolder(c *gin.Context, db *database.Database, folderService services.FolderServiceInterface) {
	id := c.Param("id")
	if err := folderService.DeleteFolder(db, id); err != nil {
		if errors.Is(err, services.ErrFolderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{})
}

func GetFolders(c *gin.Context, db *database.Database, folderService services.FolderServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	folders, err := folderService.GetFolders(db, userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, folders)
}
