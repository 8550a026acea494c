package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"PalMessenger/internal/models"
	"PalMessenger/internal/pool"
	"PalMessenger/internal/services"
)

// Handler binds the HTTP surface to the core services. Argument
// collection and formatting live here; every rule lives in a service.
type Handler struct {
	users         services.UserService
	relationships services.RelationshipService
	chats         services.ChatService
	messages      services.MessageService
	notifications services.NotificationService
	pool          *pool.Pool
}

func New(
	users services.UserService,
	relationships services.RelationshipService,
	chats services.ChatService,
	messages services.MessageService,
	notifications services.NotificationService,
	wsPool *pool.Pool,
) *Handler {
	return &Handler{
		users:         users,
		relationships: relationships,
		chats:         chats,
		messages:      messages,
		notifications: notifications,
		pool:          wsPool,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrChatNotFound),
		errors.Is(err, models.ErrMessageNotFound),
		errors.Is(err, models.ErrNotInList):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrLoginTaken),
		errors.Is(err, models.ErrAlreadyRelated),
		errors.Is(err, models.ErrDuplicateMembership),
		errors.Is(err, models.ErrSelfReference),
		errors.Is(err, models.ErrConfirmationRequired):
		status = http.StatusConflict
	case errors.Is(err, models.ErrOwnerOnly),
		errors.Is(err, models.ErrOwnerMismatch),
		errors.Is(err, models.ErrCannotRemoveOwner),
		errors.Is(err, models.ErrBlockedParticipant),
		errors.Is(err, models.ErrNotInChat):
		status = http.StatusForbidden
	}

	var storeErr *models.StoreError
	if errors.As(err, &storeErr) {
		log.Printf("Store failure: %v", storeErr)
		status = http.StatusInternalServerError
	}

	respondJSON(w, status, map[string]interface{}{
		"error":                 err.Error(),
		"confirmation_required": errors.Is(err, models.ErrConfirmationRequired),
	})
}
