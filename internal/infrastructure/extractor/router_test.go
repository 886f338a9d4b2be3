package extractor

import (
	"context"
	"testing"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type namedExtractor string

func (n namedExtractor) Extract(context.Context, domain.StoredFile) (string, error) {
	return string(n), nil
}

func TestRouterDispatchesByExtensionAndMime(t *testing.T) {
	router := NewRouter(namedExtractor("plain"), namedExtractor("pdf"))
	cases := []struct {
		file domain.StoredFile
		want string
	}{
		{domain.StoredFile{Filename: "notes.txt", MimeType: "text/plain"}, "plain"},
		{domain.StoredFile{Filename: "paper.PDF"}, "pdf"},
		{domain.StoredFile{Filename: "blob", MimeType: "application/pdf"}, "pdf"},
		{domain.StoredFile{Filename: "main.go"}, "plain"},
	}
	for _, tc := range cases {
		got, _ := router.Extract(context.Background(), tc.file)
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.file.Filename, tc.want, got)
		}
	}
}
