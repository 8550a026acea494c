package handlers

import (
	"encoding/json"
	"net/http"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/models"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByLogin(r.Context(), login)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

type statusRequest struct {
	Status *string `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	if err := h.users.UpdateStatus(r.Context(), login, req.Status); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": "updated"})
}
