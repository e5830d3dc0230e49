package models

import "time"

// FileType selects the preview policy for a document.
type FileType string

const (
	FileTypePDF    FileType = "pdf"
	FileTypeSlides FileType = "slides"
	FileTypeDoc    FileType = "doc"
	FileTypeOther  FileType = "other"
)

func (f FileType) Valid() bool {
	switch f {
	case FileTypePDF, FileTypeSlides, FileTypeDoc, FileTypeOther:
		return true
	}
	return false
}

// Document is a sellable catalog item. Price is in whole currency units (VND).
type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Price       int64     `json:"price"`
	FileRef     string    `json:"-"`
	PreviewRef  string    `json:"-"`
	FileType    FileType  `json:"file_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Free reports whether the document can be accessed without purchase.
func (d Document) Free() bool {
	return d.Price == 0
}

// Entitlement records that a user purchased a document.
type Entitlement struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DocumentID  int64     `json:"document_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PurchasedDocument is a document joined with the caller's purchase time.
type PurchasedDocument struct {
	Document
	PurchasedAt time.Time `json:"purchased_at"`
}
