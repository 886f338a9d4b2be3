package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

// Router picks the PDF extractor for PDF uploads and the plain-text one otherwise.
type Router struct {
	plain ports.TextExtractor
	pdf   ports.TextExtractor
}

func NewRouter(plain, pdf ports.TextExtractor) *Router {
	return &Router{plain: plain, pdf: pdf}
}

func (r *Router) Extract(ctx context.Context, file domain.StoredFile) (string, error) {
	if isPDF(file) {
		return r.pdf.Extract(ctx, file)
	}
	return r.plain.Extract(ctx, file)
}

func isPDF(file domain.StoredFile) bool {
	if strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(file.MimeType), "application/pdf")
}
