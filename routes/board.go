package routes

import (
	"errors"
	"net/http"

	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/services"

	"github.com/gin-gonic/gin"
)

type pointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type dragStartRequest struct {
	NoteID string  `json:"note_id" binding:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type selectRequest struct {
	NoteID string `json:"note_id" binding:"required"`
}

type hoverRequest struct {
	NoteID string `json:"note_id" binding:"required"`
}

type ocdRequest struct {
	Enabled bool `json:"enabled"`
}

func RegisterBoardRoutes(group *gin.RouterGroup, db *database.Database, boardService services.BoardServiceInterface) {
	group.POST("/board/:scope/open", func(c *gin.Context) { OpenBoard(c, db, boardService) })
	group.GET("/board", func(c *gin.Context) { GetBoardState(c, boardService) })
	group.POST("/board/select", func(c *gin.Context) { SelectNote(c, db, boardService) })
	group.POST("/board/drag/start", func(c *gin.Context) { DragStart(c, db, boardService) })
	group.POST("/board/drag/move", func(c *gin.Context) { DragMove(c, db, boardService) })
	group.POST("/board/drag/end", func(c *gin.Context) { DragEnd(c, db, boardService) })
	group.POST("/board/hover/enter", func(c *gin.Context) { HoverEnter(c, db, boardService) })
	group.POST("/board/hover/leave", func(c *gin.Context) { HoverLeave(c, db, boardService) })
	group.POST("/board/shuffle", func(c *gin.Context) { ShuffleBoard(c, db, boardService) })
	group.POST("/board/ocd", func(c *gin.Context) { SetOCDMode(c, db, boardService) })
	group.POST("/board/save", func(c *gin.Context) { SaveBoard(c, db, boardService) })
}

func OpenBoard(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := boardService.OpenScope(db, userID, c.Param("scope"))
	if err != nil {
		if errors.Is(err, services.ErrFolderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func GetBoardState(c *gin.Context, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := boardService.State(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active board"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func SelectNote(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request selectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := boardService.Select(db, userID, request.NoteID)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func DragStart(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request dragStartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := boardService.DragStart(db, userID, request.NoteID, request.X, request.Y); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot start drag"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func DragMove(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request pointerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := boardService.DragMove(db, userID, request.X, request.Y); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func DragEnd(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request pointerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clicked, state, err := boardService.DragEnd(db, userID, request.X, request.Y)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicked": clicked, "state": state})
}

func HoverEnter(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request hoverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := boardService.HoverEnter(db, userID, request.NoteID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func HoverLeave(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request hoverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := boardService.HoverLeave(db, userID, request.NoteID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func ShuffleBoard(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := boardService.Shuffle(db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func SetOCDMode(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request ocdRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := boardService.SetOCDMode(db, userID, request.Enabled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func SaveBoard(c *gin.Context, db *database.Database, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := boardService.SaveLayout(db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "state": state})
		return
	}
	c.JSON(http.StatusOK, state)
}
