package service

import "github.com/hongminglow/elearn-be/internal/models"

type PreviewMode string

const (
	PreviewFull       PreviewMode = "full"
	PreviewRestricted PreviewMode = "restricted"
)

// PreviewPolicy bounds what a non-owner may see of a paid document.
type PreviewPolicy struct {
	PageLimit  int
	SlideLimit int
}

// PreviewDecision is the outcome of applying a PreviewPolicy to one document
// and caller. ArtifactKey is empty when nothing may be shown.
type PreviewDecision struct {
	Mode        PreviewMode
	PageLimit   int
	SlideLimit  int
	ArtifactKey string
}

func (d PreviewDecision) Available() bool {
	return d.ArtifactKey != ""
}

// Decide grants the full file to owners and for free documents. Everyone else
// gets the pre-truncated preview artifact, with the limit that matches the
// file type.
func (p PreviewPolicy) Decide(doc models.Document, entitled bool) PreviewDecision {
	if entitled || doc.Free() {
		return PreviewDecision{Mode: PreviewFull, ArtifactKey: doc.FileRef}
	}

	d := PreviewDecision{Mode: PreviewRestricted, ArtifactKey: doc.PreviewRef}
	switch doc.FileType {
	case models.FileTypeSlides:
		d.SlideLimit = p.SlideLimit
	default:
		d.PageLimit = p.PageLimit
	}
	return d
}
