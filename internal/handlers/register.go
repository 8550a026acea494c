package handlers

import (
	"encoding/json"
	"net/http"

	"PalMessenger/internal/models"
)

type registerRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	user, err := h.users.Register(r.Context(), req.Login, req.Password, req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}
