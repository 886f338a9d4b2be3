package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

type UploadUseCase struct {
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	chunker   ports.Chunker
	items     ports.ItemService
}

func NewUploadUseCase(
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	items ports.ItemService,
) *UploadUseCase {
	return &UploadUseCase{
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		items:     items,
	}
}

// Upload stores the raw file and creates one item per text chunk.
func (uc *UploadUseCase) Upload(ctx context.Context, req domain.UploadRequest, body io.Reader) ([]domain.ContextItem, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("filename is required"))
	}

	storageKey := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(req.Filename))
	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	file := domain.StoredFile{
		Filename:   req.Filename,
		MimeType:   req.MimeType,
		StorageKey: storageKey,
	}
	text, err := uc.extractor.Extract(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "split text", errors.New("no chunks produced"))
	}

	name := filepath.Base(req.Filename)
	contentType := contentTypeForFile(name)
	out := make([]domain.ContextItem, 0, len(chunks))
	for i, chunk := range chunks {
		title := name
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (part %d/%d)", name, i+1, len(chunks))
		}
		item, err := uc.items.Create(ctx, domain.ItemDraft{
			Title:       title,
			Content:     chunk,
			ContentType: contentType,
			Tags:        req.Tags,
			ExtraMetadata: map[string]any{
				"filename":    name,
				"mime_type":   req.MimeType,
				"chunk_index": i,
				"chunk_count": len(chunks),
			},
			Source:    "upload:" + storageKey,
			ProjectID: req.ProjectID,
		})
		if err != nil {
			return out, fmt.Errorf("create item for chunk %d: %w", i, err)
		}
		out = append(out, *item)
	}
	return out, nil
}

var codeExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".tsx": {}, ".jsx": {}, ".java": {},
	".c": {}, ".h": {}, ".cpp": {}, ".cc": {}, ".rs": {}, ".rb": {}, ".php": {},
	".cs": {}, ".kt": {}, ".swift": {}, ".scala": {}, ".sh": {}, ".sql": {},
}

func contentTypeForFile(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".md", ".markdown":
		return domain.ContentTypeMarkdown
	case ".json":
		return domain.ContentTypeJSON
	}
	if _, ok := codeExtensions[ext]; ok {
		return domain.ContentTypeCode
	}
	return domain.ContentTypeText
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "upload.bin"
	}
	return base
}
