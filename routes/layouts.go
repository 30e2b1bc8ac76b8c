package routes

import (
	"errors"
	"net/http"

	"github.com/SuperB747/emotion-notepad-sub000/board"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/services"

	"github.com/gin-gonic/gin"
)

type setLayoutRequest struct {
	Name      string                    `json:"name"`
	Positions map[string]board.Position `json:"positions" binding:"required"`
	OCDMode   bool                      `json:"ocd_mode"`
}

func RegisterLayoutRoutes(group *gin.RouterGroup, db *database.Database, layoutService services.LayoutServiceInterface) {
	group.GET("/layouts/:scope", func(c *gin.Context) { GetLayout(c, db, layoutService) })
	group.PUT("/layouts/:scope", func(c *gin.Context) { SetLayout(c, db, layoutService) })
	group.DELETE("/layouts/:scope", func(c *gin.Context) { DeleteLayout(c, db, layoutService) })
}

func GetLayout(c *gin.Context, db *database.Database, layoutService services.LayoutServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	layout, err := layoutService.GetLayout(db, userID, c.Param("scope"))
	if err != nil {
		if errors.Is(err, services.ErrLayoutNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, layout)
}

func SetLayout(c *gin.Context, db *database.Database, layoutService services.LayoutServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request setLayoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	layout, err := layoutService.SetLayout(db, userID, c.Param("scope"), request.Name, request.Positions, request.OCDMode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, layout)
}

func DeleteLayout(c *gin.Context, db *database.Database, layoutService services.LayoutServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := layoutService.DeleteLayout(db, userID, c.Param("scope")); err != nil {
		if errors.Is(err, services.ErrLayoutNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Layout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{})
}
