package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/infrastructure/exchange"
)

func (rt *Router) databaseInfo(w http.ResponseWriter, r *http.Request) {
	info, err := rt.services.Stats.DatabaseInfo(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	var projectID string
	if err := bindQuery(r.URL.Query(), "project_id", &projectID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	stats, err := rt.services.Stats.Stats(r.Context(), projectID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) exportData(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	bundle, err := rt.services.Transfer.Export(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exchange.Encode(&buf, format, bundle); err != nil {
		rt.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("context_export_%s.%s", rt.now().UTC().Format("20060102_150405"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) exportInfo(w http.ResponseWriter, r *http.Request) {
	info, err := rt.services.Transfer.ExportInfo(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (rt *Router) importData(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.UploadMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.UploadMaxBytes)
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.writeError(w, r, multipartError(err))
		return
	}
	defer file.Close()

	bundle, err := exchange.Decode(fileHeader.Filename, file)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	report, err := rt.services.Transfer.Import(r.Context(), bundle)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) wipeData(w http.ResponseWriter, r *http.Request) {
	var confirm bool
	if err := bindQuery(r.URL.Query(), "confirm", &confirm); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if !confirm {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "wipe", fmt.Errorf("pass confirm=true to delete all data")))
		return
	}
	report, err := rt.services.Transfer.Wipe(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) scheduleReindex(w http.ResponseWriter, r *http.Request) {
	scheduled, err := rt.services.Reindex.ScheduleAll(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"scheduled": scheduled})
}
