package handlers

import (
	"net/http"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/models"
)

// ReadNotifications returns every pending notification for the caller
// and consumes them: a repeat call comes back empty.
func (h *Handler) ReadNotifications(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	views, err := h.notifications.ReadAll(r.Context(), login)
	if err != nil {
		respondError(w, err)
		return
	}

	if views == nil {
		views = []models.NotificationView{}
	}
	respondJSON(w, http.StatusOK, views)
}
