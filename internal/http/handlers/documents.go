package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/elearn-be/internal/filestore"
	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/middleware"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/service"
)

// DocumentHandler serves the catalog, purchases, downloads, and previews.
type DocumentHandler struct {
	documents *service.Documents
	gate      *middleware.Gate
	logger    logging.Logger
	errorWriter
}

func NewDocumentHandler(documents *service.Documents, gate *middleware.Gate, logger logging.Logger, detail bool) *DocumentHandler {
	logger = logger.With("handler", "documents")
	return &DocumentHandler{
		documents:   documents,
		gate:        gate,
		logger:      logger,
		errorWriter: errorWriter{logger: logger, detail: detail},
	}
}

func (h *DocumentHandler) Register(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.gate.Optional)
			r.Get("/", h.handleList)
			r.Get("/{id}", h.handleGet)
			r.Get("/preview/{id}", h.handlePreview)
			r.Get("/preview/{id}/content", h.handlePreviewContent)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require)
			r.Get("/mine", h.handleLibrary)
			r.Post("/purchase", h.handlePurchase)
			r.Get("/download/{id}", h.handleDownload)
		})
	})
}

func (h *DocumentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	views, err := h.documents.List(r.Context(), viewer(r), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", views)
}

func (h *DocumentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.documents.Get(r.Context(), viewer(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", view)
}

func (h *DocumentHandler) handleLibrary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	docs, err := h.documents.Library(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", docs)
}

func (h *DocumentHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req dto.PurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.documents.Purchase(r.Context(), user, req.DocumentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	msg := "Mua tài liệu thành công"
	if !res.Created {
		msg = "Bạn đã mua tài liệu này trước đó"
	}
	respond.JSON(w, http.StatusOK, msg, dto.PurchaseResponse{Created: res.Created, AlreadyPurchased: !res.Created})
}

func (h *DocumentHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	obj, name, err := h.documents.Download(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.stream(w, r, obj, "attachment", name)
}

func (h *DocumentHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.documents.Preview(r.Context(), viewer(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if resp.Available && resp.ContentURL == "" {
		resp.ContentURL = fmt.Sprintf("/documents/preview/%d/content", id)
	}
	respond.JSON(w, http.StatusOK, resp.Message, resp)
}

func (h *DocumentHandler) handlePreviewContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	obj, err := h.documents.OpenPreview(r.Context(), viewer(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.stream(w, r, obj, "inline", "")
}

func (h *DocumentHandler) stream(w http.ResponseWriter, r *http.Request, obj *filestore.Object, disposition, filename string) {
	defer obj.Body.Close()

	hdr := w.Header()
	hdr.Set("Content-Type", obj.ContentType)
	hdr.Set("Cache-Control", "private, no-store")
	hdr.Set("X-Content-Type-Options", "nosniff")
	if obj.Size > 0 {
		hdr.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	params := map[string]string{}
	if filename != "" {
		params["filename"] = filename
	}
	hdr.Set("Content-Disposition", mime.FormatMediaType(disposition, params))

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn(r.Context(), "stream interrupted", "path", r.URL.Path, "error", err)
	}
}

// viewer returns the caller attached by Gate.Optional, or nil when anonymous.
func viewer(r *http.Request) *models.User {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil
	}
	return &user
}
