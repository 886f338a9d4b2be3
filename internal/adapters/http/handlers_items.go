package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/context-store/internal/core/domain"
)

func (rt *Router) createItem(w http.ResponseWriter, r *http.Request) {
	var draft domain.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		rt.writeError(w, r, err)
		return
	}
	item, err := rt.services.Items.Create(r.Context(), draft)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (rt *Router) listItems(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	var filter domain.ItemListFilter
	if err := bindQuery(values, "project_id", &filter.ProjectID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := bindQuery(values, "content_type", &filter.ContentType); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := bindQueryList(values, "tags", &filter.Tags); err != nil {
		rt.writeError(w, r, err)
		return
	}
	page, err := bindPage(values)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	filter.Limit, filter.Offset = page.Limit, page.Offset

	items, err := rt.services.Items.List(r.Context(), filter)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (rt *Router) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDFromPath(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	item, err := rt.services.Items.Get(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (rt *Router) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDFromPath(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var patch domain.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		rt.writeError(w, r, err)
		return
	}
	item, err := rt.services.Items.Update(r.Context(), id, patch)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (rt *Router) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDFromPath(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	hard, err := hardDelete(r.URL.Query())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := rt.services.Items.Delete(r.Context(), id, hard); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Context item deleted successfully",
		"id":      id,
		"hard":    hard,
	})
}

func (rt *Router) uploadItems(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.UploadMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.UploadMaxBytes)
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.writeError(w, r, multipartError(err))
		return
	}
	defer file.Close()

	req := domain.UploadRequest{
		Filename:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		ProjectID: strings.TrimSpace(r.FormValue("project_id")),
		Tags:      splitList(r.FormValue("tags")),
	}
	items, err := rt.services.Upload.Upload(r.Context(), req, file)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", err)
	}
	return nil
}

func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("file exceeds %d bytes", tooLarge.Limit))
	}
	return domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("multipart field 'file' is required"))
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return domain.NormalizeTags(strings.Split(raw, ","))
}
