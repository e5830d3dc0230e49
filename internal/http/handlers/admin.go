package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/middleware"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/service"
)

// AdminHandler exposes user and catalog management to administrators.
type AdminHandler struct {
	accounts  *service.Accounts
	documents *service.Documents
	gate      *middleware.Gate
	errorWriter
}

func NewAdminHandler(accounts *service.Accounts, documents *service.Documents, gate *middleware.Gate, logger logging.Logger, detail bool) *AdminHandler {
	return &AdminHandler{
		accounts:    accounts,
		documents:   documents,
		gate:        gate,
		errorWriter: errorWriter{logger: logger.With("handler", "admin"), detail: detail},
	}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.gate.Require, middleware.Authorize(models.AdminOnly))

		r.Get("/users", h.handleListUsers)
		r.Patch("/users/{id}/status", h.handleSetStatus)
		r.Patch("/users/{id}/role", h.handleSetRole)
		r.Post("/documents", h.handleCreateDocument)
		r.Get("/documents/{id}/purchases", h.handlePurchases)
	})
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	users, err := h.accounts.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", users)
}

func (h *AdminHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dto.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.SetStatus(r.Context(), actor, id, req); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Cập nhật trạng thái thành công", nil)
}

func (h *AdminHandler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dto.UpdateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.SetRole(r.Context(), actor, id, req); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Cập nhật vai trò thành công", nil)
}

func (h *AdminHandler) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := h.documents.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Tạo tài liệu thành công", doc)
}

func (h *AdminHandler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	grants, err := h.documents.Purchases(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", grants)
}
