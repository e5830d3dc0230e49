package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hongminglow/elearn-be/internal/models"
)

type PurchaseRequest struct {
	DocumentID int64 `json:"document_id"`
}

func (r PurchaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentID,
			validation.Required.Error("Vui lòng chọn tài liệu"),
			validation.Min(1).Error("Mã tài liệu không hợp lệ"),
		),
	)
}

type PurchaseResponse struct {
	Created          bool `json:"created"`
	AlreadyPurchased bool `json:"already_purchased"`
}

// DocumentView is a catalog entry as seen by a particular caller.
type DocumentView struct {
	models.Document
	Purchased bool `json:"purchased"`
}

// PreviewResponse describes how much of a document the caller may see.
type PreviewResponse struct {
	DocumentID int64           `json:"document_id"`
	Mode       string          `json:"mode"`
	FileType   models.FileType `json:"file_type"`
	PageLimit  int             `json:"page_limit,omitempty"`
	SlideLimit int             `json:"slide_limit,omitempty"`
	Available  bool            `json:"available"`
	ContentURL string          `json:"content_url,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type CreateDocumentRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Price       int64           `json:"price"`
	FileRef     string          `json:"file_ref"`
	PreviewRef  string          `json:"preview_ref"`
	FileType    models.FileType `json:"file_type"`
}

func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Vui lòng nhập tiêu đề"),
			validation.Length(1, 255).Error("Tiêu đề quá dài"),
		),
		validation.Field(&r.Price, validation.Min(0).Error("Giá không được âm")),
		validation.Field(&r.FileRef, validation.Required.Error("Vui lòng chọn tệp tài liệu")),
		validation.Field(&r.FileType,
			validation.Required.Error("Vui lòng chọn loại tệp"),
			validation.In(models.FileTypePDF, models.FileTypeSlides, models.FileTypeDoc, models.FileTypeOther).
				Error("Loại tệp không hợp lệ"),
		),
	)
}

// Document converts the request into a new catalog entry.
func (r CreateDocumentRequest) Document(now time.Time) models.Document {
	return models.Document{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Price:       r.Price,
		FileRef:     r.FileRef,
		PreviewRef:  r.PreviewRef,
		FileType:    r.FileType,
		CreatedAt:   now,
	}
}
