package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/models"
)

type postMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	msg, err := h.messages.PostMessage(r.Context(), chatID, login, req.Text)
	if err != nil {
		respondError(w, err)
		return
	}

	// Push after commit so recipients never see an uncommitted message.
	if members, err := h.chats.Participants(r.Context(), chatID); err != nil {
		log.Printf("Error loading participants of chat %d for push: %v", chatID, err)
	} else {
		recipients := make([]string, 0, len(members))
		for _, m := range members {
			if m != login {
				recipients = append(recipients, m)
			}
		}
		h.pool.NotifyUsers(recipients, "new_message", msg)
	}

	respondJSON(w, http.StatusCreated, msg)
}

// GetMessages returns one page of the chat history. The depth query
// parameter selects the window: 0 is the most recent one, each
// increment goes one page further into the past.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	members, err := h.chats.Participants(r.Context(), chatID)
	if err != nil {
		respondError(w, err)
		return
	}
	isMember := false
	for _, m := range members {
		if m == login {
			isMember = true
			break
		}
	}
	if !isMember {
		respondError(w, models.ErrNotInChat)
		return
	}

	depth := 0
	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		depth, err = strconv.Atoi(depthStr)
		if err != nil || depth < 0 {
			respondError(w, models.ErrValidation)
			return
		}
	}

	messages, err := h.messages.LoadPage(r.Context(), chatID, depth)
	if err != nil {
		respondError(w, err)
		return
	}

	if messages == nil {
		messages = []models.Message{}
	}
	respondJSON(w, http.StatusOK, messages)
}

type editMessageRequest struct {
	Text string `json:"text"`
}

func messageIDParam(r *http.Request) (int, error) {
	messageID, err := strconv.Atoi(chi.URLParam(r, "message_id"))
	if err != nil || messageID <= 0 {
		return 0, models.ErrValidation
	}
	return messageID, nil
}

func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messageID, err := messageIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req editMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	if err := h.messages.EditMessage(r.Context(), messageID, login, req.Text); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": "edited"})
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messageID, err := messageIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.messages.DeleteMessage(r.Context(), messageID, login); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
