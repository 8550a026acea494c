package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/config"
	"PalMessenger/internal/db"
	"PalMessenger/internal/handlers"
	"PalMessenger/internal/pool"
	"PalMessenger/internal/repository"
	"PalMessenger/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}

	ctx := context.Background()
	client, err := db.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %s", err)
	}
	defer client.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to apply migrations: %s", err)
	}

	txManager := db.NewTxManager(client)
	userRepo := repository.NewUserRepository(client)
	relationRepo := repository.NewRelationRepository(client)
	chatRepo := repository.NewChatRepository(client)
	messageRepo := repository.NewMessageRepository(client)
	notificationRepo := repository.NewNotificationRepository(client)

	userService := services.NewUserService(userRepo, txManager, cfg.JWTSecret)
	relationshipService := services.NewRelationshipService(userRepo, relationRepo, txManager)
	chatService := services.NewChatService(userRepo, relationRepo, chatRepo, messageRepo, notificationRepo, txManager)
	notificationService := services.NewNotificationService(chatRepo, notificationRepo, txManager)
	messageService := services.NewMessageService(chatRepo, messageRepo, notificationService, txManager)

	wsPool := pool.New()
	h := handlers.New(userService, relationshipService, chatService, messageService, notificationService, wsPool)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/profile", h.GetProfile)
		r.Put("/api/profile/status", h.UpdateStatus)

		r.Get("/api/contacts", h.ListContacts)
		r.Post("/api/contacts", h.AddContact)
		r.Delete("/api/contacts/{login}", h.RemoveContact)
		r.Get("/api/blocks", h.ListBlocks)
		r.Post("/api/blocks", h.AddBlock)
		r.Delete("/api/blocks/{login}", h.RemoveBlock)

		r.Get("/api/chats", h.ListChats)
		r.Post("/api/chats", h.CreateChat)
		r.Delete("/api/chats/{chat_id}", h.DeleteChat)
		r.Post("/api/chats/{chat_id}/participants", h.AddParticipant)
		r.Delete("/api/chats/{chat_id}/participants/{login}", h.RemoveParticipant)

		r.Get("/api/chats/{chat_id}/messages", h.GetMessages)
		r.Post("/api/chats/{chat_id}/messages", h.PostMessage)
		r.Put("/api/messages/{message_id}", h.EditMessage)
		r.Delete("/api/messages/{message_id}", h.DeleteMessage)

		r.Get("/api/notifications", h.ReadNotifications)

		r.Get("/ws", h.WebSocket)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server started on port %s\n", cfg.HTTPPort)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %s\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Println("Stopping the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %s\n", err)
	}
	log.Println("Server has been successfully stopped")
}
