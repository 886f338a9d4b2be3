package httpadapter

import (
	"net/http"

	"github.com/kirillkom/context-store/internal/core/domain"
)

func (rt *Router) createProject(w http.ResponseWriter, r *http.Request) {
	var draft domain.ProjectDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		rt.writeError(w, r, err)
		return
	}
	project, err := rt.services.Projects.Create(r.Context(), draft)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (rt *Router) listProjects(w http.ResponseWriter, r *http.Request) {
	page, err := bindPage(r.URL.Query())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	projects, err := rt.services.Projects.List(r.Context(), page)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (rt *Router) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := rt.services.Projects.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) updateProject(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		rt.writeError(w, r, err)
		return
	}
	project, err := rt.services.Projects.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) deleteProject(w http.ResponseWriter, r *http.Request) {
	hard, err := hardDelete(r.URL.Query())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := rt.services.Projects.Delete(r.Context(), id, hard); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Project deleted successfully",
		"id":      id,
		"hard":    hard,
	})
}
