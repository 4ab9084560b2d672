package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type accountRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type accountResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List accounts error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountResponse{ID: a.ID, Name: a.Name, Type: a.Type})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account := core.Account{Name: sanitizeInput(req.Name), Type: sanitizeInput(req.Type)}
	if account.Type == "" {
		account.Type = "corrente"
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.store.CreateAccount(r.Context(), account.Name, account.Type)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create account error", "error", err, "name", account.Name)
		writeError(w, http.StatusInternalServerError, "failed to save account")
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{ID: created.ID, Name: created.Name, Type: created.Type})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrAccountInUse):
			writeError(w, http.StatusConflict, "account has transactions and cannot be deleted")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		default:
			slog.ErrorContext(r.Context(), "Delete account error", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "failed to delete account")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := core.Category{Name: sanitizeInput(req.Name), Kind: core.TxType(req.Kind)}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.store.CreateCategory(r.Context(), category.Name, string(category.Kind))
	if err != nil {
		slog.ErrorContext(r.Context(), "Create category error", "error", err, "name", category.Name)
		writeError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, Kind: string(created.Kind)})
}
