package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type extractorFake struct {
	storage *storageFake
	file    domain.StoredFile
}

func (f *extractorFake) Extract(_ context.Context, file domain.StoredFile) (string, error) {
	f.file = file
	return f.storage.savedBody, nil
}

type chunkerFake struct {
	size int
}

func (f chunkerFake) Split(text string) []string {
	var out []string
	for len(text) > f.size {
		out = append(out, text[:f.size])
		text = text[f.size:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func TestUploadCreatesOneItemPerChunk(t *testing.T) {
	storage := &storageFake{}
	extractor := &extractorFake{storage: storage}
	repo := newItemRepoFake()
	items := NewItemUseCase(repo, &vectorIndexFake{}, &embedderFake{}, nil, discardLogger())
	uc := NewUploadUseCase(storage, extractor, chunkerFake{size: 4}, items)

	got, err := uc.Upload(context.Background(), domain.UploadRequest{
		Filename:  "../notes v1.md",
		MimeType:  "text/markdown",
		ProjectID: "p1",
		Tags:      []string{"docs"},
	}, strings.NewReader("abcdefgh"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Title != "notes v1.md (part 1/2)" || got[1].Title != "notes v1.md (part 2/2)" {
		t.Fatalf("unexpected titles %q / %q", got[0].Title, got[1].Title)
	}
	if got[0].ContentType != domain.ContentTypeMarkdown {
		t.Fatalf("expected markdown, got %q", got[0].ContentType)
	}
	if !strings.HasSuffix(storage.savedKey, "_notes_v1.md") {
		t.Fatalf("expected sanitized storage key, got %q", storage.savedKey)
	}
	if got[0].Source != "upload:"+storage.savedKey {
		t.Fatalf("unexpected source %q", got[0].Source)
	}
	if extractor.file.StorageKey != storage.savedKey {
		t.Fatalf("extractor got wrong key %q", extractor.file.StorageKey)
	}
	if got[0].ProjectID != "p1" || len(got[0].Tags) != 1 {
		t.Fatalf("expected project and tags carried over, got %+v", got[0])
	}
}

func TestUploadEmptyTextIsInvalid(t *testing.T) {
	storage := &storageFake{}
	items := NewItemUseCase(newItemRepoFake(), &vectorIndexFake{}, &embedderFake{}, nil, discardLogger())
	uc := NewUploadUseCase(storage, &extractorFake{storage: storage}, chunkerFake{size: 10}, items)

	_, err := uc.Upload(context.Background(), domain.UploadRequest{Filename: "a.txt"}, strings.NewReader("   "))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	storage := &storageFake{err: errors.New("disk full")}
	items := NewItemUseCase(newItemRepoFake(), &vectorIndexFake{}, &embedderFake{}, nil, discardLogger())
	uc := NewUploadUseCase(storage, &extractorFake{storage: storage}, chunkerFake{size: 10}, items)

	if _, err := uc.Upload(context.Background(), domain.UploadRequest{Filename: "a.txt"}, strings.NewReader("x")); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestContentTypeForFile(t *testing.T) {
	cases := map[string]string{
		"README.md":  domain.ContentTypeMarkdown,
		"data.JSON":  domain.ContentTypeJSON,
		"main.go":    domain.ContentTypeCode,
		"script.py":  domain.ContentTypeCode,
		"notes.txt":  domain.ContentTypeText,
		"report.pdf": domain.ContentTypeText,
	}
	for name, want := range cases {
		if got := contentTypeForFile(name); got != want {
			t.Fatalf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("../my file(1).txt"); got != "my_file_1_.txt" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := sanitizeFilename(""); got != "upload.bin" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}
