package routes

import (
	"errors"
	"net/http"

	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

func RegisterAuthRoutes(router *gin.Engine, db *database.Database, authService services.AuthServiceInterface, userService services.UserServiceInterface) {
	group := router.Group("/api/v1/auth")
	{
		group.POST("/login", func(c *gin.Context) { Login(c, db, authService) })
		group.POST("/register", func(c *gin.Context) { Register(c, db, userService) })
	}
}

// RegisterLogoutRoute lives on the authenticated group: logout needs
// the caller's identity to tear down their board session.
func RegisterLogoutRoute(group *gin.RouterGroup, boardService services.BoardServiceInterface) {
	group.POST("/auth/logout", func(c *gin.Context) { Logout(c, boardService) })
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := authService.Login(db, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token})
}

func Register(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := userService.CreateUser(db, map[string]interface{}{
		"email":        request.Email,
		"password":     request.Password,
		"display_name": request.DisplayName,
	})
	if err != nil {
		if errors.Is(err, services.ErrResourceExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Logout flushes and discards the caller's board session. Tokens are
// stateless JWTs, so there is nothing to revoke server-side.
func Logout(c *gin.Context, boardService services.BoardServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardService.CloseUser(userID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
