package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/models"
)

type createChatRequest struct {
	Members []string `json:"members"`
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	chat, err := h.chats.CreateChat(r.Context(), login, req.Members)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, chat)
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.chats.ListChatsFor(r.Context(), login)
	if err != nil {
		respondError(w, err)
		return
	}

	if chats == nil {
		chats = []models.ChatWithLastMessage{}
	}
	respondJSON(w, http.StatusOK, chats)
}

func chatIDParam(r *http.Request) (int, error) {
	chatID, err := strconv.Atoi(chi.URLParam(r, "chat_id"))
	if err != nil || chatID <= 0 {
		return 0, models.ErrValidation
	}
	return chatID, nil
}

type participantRequest struct {
	Login string `json:"login"`
}

func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
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

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	if err := h.chats.AddMember(r.Context(), chatID, login, req.Login); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"result": "added"})
}

func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
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

	member := chi.URLParam(r, "login")
	if err := h.chats.RemoveMember(r.Context(), chatID, login, member); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": "removed"})
}

func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
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

	if err := h.chats.DeleteChat(r.Context(), chatID, login); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
