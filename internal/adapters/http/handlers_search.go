package httpadapter

import (
	"net/http"

	"github.com/kirillkom/context-store/internal/core/domain"
)

func (rt *Router) searchItems(w http.ResponseWriter, r *http.Request) {
	var query domain.SearchQuery
	if err := decodeJSON(w, r, &query); err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.runSearch(w, r, query)
}

// searchItemsByType serves GET /v1/items/search/{search_type} with the
// query and filters taken from the query string.
func (rt *Router) searchItemsByType(w http.ResponseWriter, r *http.Request) {
	searchType, err := domain.ParseSearchType(r.PathValue("search_type"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	values := r.URL.Query()
	query := domain.SearchQuery{SearchType: searchType}
	if err := bindQuery(values, "query", &query.Query); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := bindQuery(values, "project_id", &query.Filters.ProjectID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	page, err := bindPage(values)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	query.Limit, query.Offset = page.Limit, page.Offset

	weight, err := queryParam[float64](values, "semantic_weight", true)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	query.SemanticWeight = weight

	if err := bindQueryList(values, "content_types", &query.Filters.ContentTypes); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := bindQueryList(values, "tags", &query.Filters.Tags); err != nil {
		rt.writeError(w, r, err)
		return
	}

	rt.runSearch(w, r, query)
}

func (rt *Router) runSearch(w http.ResponseWriter, r *http.Request, query domain.SearchQuery) {
	result, err := rt.services.Search.Search(r.Context(), query)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
