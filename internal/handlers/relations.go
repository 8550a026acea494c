package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/models"
)

type addRelationRequest struct {
	Login string `json:"login"`
	// Confirm approves moving the login from the opposite list when
	// the two would otherwise overlap.
	Confirm bool `json:"confirm"`
}

func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, models.ListKindContact)
}

func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, models.ListKindBlock)
}

func (h *Handler) addRelation(w http.ResponseWriter, r *http.Request, kind string) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req addRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.ErrValidation)
		return
	}

	var err error
	if kind == models.ListKindContact {
		err = h.relationships.AddContact(r.Context(), login, req.Login, req.Confirm)
	} else {
		err = h.relationships.AddBlock(r.Context(), login, req.Login, req.Confirm)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"result": "added"})
}

func (h *Handler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, models.ListKindContact)
}

func (h *Handler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, models.ListKindBlock)
}

func (h *Handler) removeRelation(w http.ResponseWriter, r *http.Request, kind string) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	target := chi.URLParam(r, "login")

	var err error
	if kind == models.ListKindContact {
		err = h.relationships.RemoveContact(r.Context(), login, target)
	} else {
		err = h.relationships.RemoveBlock(r.Context(), login, target)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": "removed"})
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	h.listRelations(w, r, models.ListKindContact)
}

func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	h.listRelations(w, r, models.ListKindBlock)
}

func (h *Handler) listRelations(w http.ResponseWriter, r *http.Request, kind string) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var rows []models.RelationRow
	var err error
	if kind == models.ListKindContact {
		rows, err = h.relationships.ListContacts(r.Context(), login)
	} else {
		rows, err = h.relationships.ListBlocks(r.Context(), login)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	if rows == nil {
		rows = []models.RelationRow{}
	}
	respondJSON(w, http.StatusOK, rows)
}
