package handlers

import (
	"encoding/json"
	"net/http"

	"PalMessenger/internal/models"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	token, err := h.users.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"login":        req.Login,
	})
}
