package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/filestore"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/storage"
)

const (
	msgDocumentNotFound = "Không tìm thấy tài liệu"
	msgNotPurchased     = "Bạn cần mua tài liệu để tải xuống"
	msgFileMissing      = "Tệp tài liệu không tồn tại"
	msgPreviewOnly      = "Bạn đang xem bản xem trước. Mua tài liệu để xem toàn bộ nội dung."
	msgNoPreview        = "Tài liệu này chưa có bản xem trước"
)

// PurchaseResult reports whether a purchase created a new entitlement.
type PurchaseResult struct {
	Created bool
}

// Documents serves the catalog, records purchases, and decides how much of
// a document a caller may read.
type Documents struct {
	docs   storage.DocumentStore
	ledger storage.EntitlementStore
	files  filestore.Store
	policy PreviewPolicy
	logger logging.Logger
	now    func() time.Time
}

func NewDocuments(
	docs storage.DocumentStore,
	ledger storage.EntitlementStore,
	files filestore.Store,
	policy PreviewPolicy,
	logger logging.Logger,
) *Documents {
	return &Documents{
		docs:   docs,
		ledger: ledger,
		files:  files,
		policy: policy,
		logger: logger.With("module", "documents"),
		now:    time.Now,
	}
}

// List returns a page of the catalog, flagging entries the viewer owns.
// viewer may be nil for anonymous callers.
func (d *Documents) List(ctx context.Context, viewer *models.User, limit, offset int) ([]dto.DocumentView, error) {
	docs, err := d.docs.ListDocuments(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	owned := map[int64]struct{}{}
	if viewer != nil {
		purchased, err := d.ledger.ListEntitlementsByUser(ctx, viewer.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		for _, p := range purchased {
			owned[p.ID] = struct{}{}
		}
	}

	views := make([]dto.DocumentView, 0, len(docs))
	for _, doc := range docs {
		_, ok := owned[doc.ID]
		views = append(views, dto.DocumentView{Document: doc, Purchased: ok})
	}
	return views, nil
}

func (d *Documents) Get(ctx context.Context, viewer *models.User, id int64) (dto.DocumentView, error) {
	doc, err := d.find(ctx, id)
	if err != nil {
		return dto.DocumentView{}, err
	}
	var owned bool
	if viewer != nil {
		if owned, err = d.HasEntitlement(ctx, viewer.ID, id); err != nil {
			return dto.DocumentView{}, err
		}
	}
	return dto.DocumentView{Document: doc, Purchased: owned}, nil
}

func (d *Documents) Create(ctx context.Context, req dto.CreateDocumentRequest) (models.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := req.Validate(); err != nil {
		return models.Document{}, invalid(err)
	}
	doc, err := d.docs.CreateDocument(ctx, req.Document(d.now().UTC()))
	if err != nil {
		return models.Document{}, apperr.Internal(err)
	}
	d.logger.Info(ctx, "document created", "document_id", doc.ID, "file_type", doc.FileType)
	return doc, nil
}

// HasEntitlement reports whether the user owns the document.
func (d *Documents) HasEntitlement(ctx context.Context, userID, documentID int64) (bool, error) {
	_, err := d.ledger.FindEntitlement(ctx, userID, documentID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, apperr.Internal(err)
	}
}

// Purchase grants the user an entitlement to the document. Buying something
// already owned succeeds with Created=false and leaves the ledger unchanged.
func (d *Documents) Purchase(ctx context.Context, user models.User, documentID int64) (PurchaseResult, error) {
	if user.ID <= 0 {
		return PurchaseResult{}, apperr.Unauthenticated(msgLoginRequired)
	}
	if err := (dto.PurchaseRequest{DocumentID: documentID}).Validate(); err != nil {
		return PurchaseResult{}, invalid(err)
	}
	if _, err := d.find(ctx, documentID); err != nil {
		return PurchaseResult{}, err
	}

	owned, err := d.HasEntitlement(ctx, user.ID, documentID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if owned {
		return PurchaseResult{Created: false}, nil
	}

	if _, err := d.ledger.InsertEntitlement(ctx, user.ID, documentID, d.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return PurchaseResult{Created: false}, nil
		}
		if errors.Is(err, storage.ErrNotFound) {
			return PurchaseResult{}, apperr.NotFound(msgDocumentNotFound)
		}
		return PurchaseResult{}, apperr.Internal(err)
	}

	d.logger.Info(ctx, "document purchased", "user_id", user.ID, "document_id", documentID)
	return PurchaseResult{Created: true}, nil
}

// Library lists the documents a user owns, newest purchase first.
func (d *Documents) Library(ctx context.Context, userID int64) ([]models.PurchasedDocument, error) {
	docs, err := d.ledger.ListEntitlementsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return docs, nil
}

// Purchases lists every entitlement recorded for a document.
func (d *Documents) Purchases(ctx context.Context, documentID int64) ([]models.Entitlement, error) {
	if _, err := d.find(ctx, documentID); err != nil {
		return nil, err
	}
	grants, err := d.ledger.ListEntitlementsByDocument(ctx, documentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return grants, nil
}

// Preview describes what the viewer may see of a document. viewer may be nil.
func (d *Documents) Preview(ctx context.Context, viewer *models.User, id int64) (dto.PreviewResponse, error) {
	doc, decision, err := d.decide(ctx, viewer, id)
	if err != nil {
		return dto.PreviewResponse{}, err
	}

	resp := dto.PreviewResponse{
		DocumentID: doc.ID,
		Mode:       string(decision.Mode),
		FileType:   doc.FileType,
		PageLimit:  decision.PageLimit,
		SlideLimit: decision.SlideLimit,
		Available:  decision.Available(),
	}
	switch {
	case !resp.Available:
		resp.Message = msgNoPreview
	case decision.Mode == PreviewRestricted:
		resp.Message = msgPreviewOnly
	}

	if resp.Available {
		url, err := d.files.URL(ctx, decision.ArtifactKey)
		if err != nil {
			return dto.PreviewResponse{}, apperr.Internal(err)
		}
		resp.ContentURL = url
	}
	return resp, nil
}

// OpenPreview opens the artifact the viewer is allowed to read: the full file
// when entitled or free, otherwise the truncated preview artifact.
func (d *Documents) OpenPreview(ctx context.Context, viewer *models.User, id int64) (*filestore.Object, error) {
	_, decision, err := d.decide(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !decision.Available() {
		return nil, apperr.NotFound(msgNoPreview)
	}
	return d.open(ctx, decision.ArtifactKey)
}

// Download opens the full file. Only owners may download paid documents.
func (d *Documents) Download(ctx context.Context, user models.User, id int64) (*filestore.Object, string, error) {
	doc, err := d.find(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if !doc.Free() {
		owned, err := d.HasEntitlement(ctx, user.ID, id)
		if err != nil {
			return nil, "", err
		}
		if !owned {
			d.logger.Info(ctx, "download denied", "user_id", user.ID, "document_id", id)
			return nil, "", apperr.Forbidden(msgNotPurchased)
		}
	}

	obj, err := d.open(ctx, doc.FileRef)
	if err != nil {
		return nil, "", err
	}
	return obj, downloadName(doc), nil
}

func (d *Documents) decide(ctx context.Context, viewer *models.User, id int64) (models.Document, PreviewDecision, error) {
	doc, err := d.find(ctx, id)
	if err != nil {
		return models.Document{}, PreviewDecision{}, err
	}
	var owned bool
	if viewer != nil {
		if owned, err = d.HasEntitlement(ctx, viewer.ID, id); err != nil {
			return models.Document{}, PreviewDecision{}, err
		}
	}
	return doc, d.policy.Decide(doc, owned), nil
}

func (d *Documents) find(ctx context.Context, id int64) (models.Document, error) {
	if id <= 0 {
		return models.Document{}, apperr.NotFound(msgDocumentNotFound)
	}
	doc, err := d.docs.FindDocument(ctx, id)
	if err != nil {
		return models.Document{}, storageErr(err, msgDocumentNotFound)
	}
	return doc, nil
}

func (d *Documents) open(ctx context.Context, key string) (*filestore.Object, error) {
	obj, err := d.files.Open(ctx, key)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			d.logger.Error(ctx, "artifact missing", "key", key)
			return nil, apperr.NotFound(msgFileMissing)
		}
		return nil, apperr.Internal(err)
	}
	return obj, nil
}

// downloadName builds an attachment filename from the title and the stored
// file's extension.
func downloadName(doc models.Document) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(doc.Title))
	if name == "" {
		name = "document"
	}
	return name + path.Ext(doc.FileRef)
}
