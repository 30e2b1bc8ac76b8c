package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SuperB747/emotion-notepad-sub000/board"
	"github.com/SuperB747/emotion-notepad-sub000/broker"
	"github.com/SuperB747/emotion-notepad-sub000/config"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/middleware"
	"github.com/SuperB747/emotion-notepad-sub000/routes"
	"github.com/SuperB747/emotion-notepad-sub000/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	producer, err := broker.NewProducer(cfg.NatsURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize NATS producer: %v", err)
		log.Println("The application will continue, but live event delivery is disabled")
	} else {
		defer producer.Close()

		dispatcher := services.NewEventDispatcherService(db, producer, 2*time.Second)
		services.EventDispatcherServiceInstance = dispatcher
		dispatcher.Start()
		defer dispatcher.Stop()
	}

	wsSubjects := []string{
		broker.NoteSubject,
		broker.FolderSubject,
		broker.LayoutSubject,
	}
	webSocketService := services.NewWebSocketService(cfg.NatsURL, wsSubjects)
	services.WebSocketServiceInstance = webSocketService

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	services.AuthServiceInstance = authService

	userService := services.NewUserService(authService)
	services.UserServiceInstance = userService

	noteService := services.NewNoteService()
	services.NoteServiceInstance = noteService

	folderService := services.NewFolderService()
	services.FolderServiceInstance = folderService

	layoutService := services.NewLayoutService()
	services.LayoutServiceInstance = layoutService

	boardService := services.NewBoardService(
		layoutService,
		noteService,
		folderService,
		board.Size{Width: cfg.BoardWidth, Height: cfg.BoardHeight},
		time.Duration(cfg.DebounceMillis)*time.Millisecond,
		nil,
	)
	services.BoardServiceInstance = boardService

	// Tear down a user's board session once their last connection drops
	// so pending layout writes flush and the session map does not grow.
	webSocketService.SetDisconnectHandler(boardService.CloseUser)
	webSocketService.Start()
	defer webSocketService.Stop()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.RegisterAuthRoutes(router, db, authService, userService)
	routes.RegisterWebSocketRoutes(router, authService, webSocketService)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	{
		routes.RegisterUserRoutes(api, db, userService)
		routes.RegisterNoteRoutes(api, db, noteService)
		routes.RegisterFolderRoutes(api, db, folderService)
		routes.RegisterLayoutRoutes(api, db, layoutService)
		routes.RegisterBoardRoutes(api, db, boardService)
		routes.RegisterLogoutRoute(api, boardService)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		webSocketService.Stop()
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
