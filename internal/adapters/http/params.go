package httpadapter

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/context-store/internal/core/domain"
)

// queryParam decodes an optional query parameter. A missing parameter
// yields nil. Lists use the comma-separated form (tags=a,b) when explode is
// false.
func queryParam[T any](values url.Values, name string, explode bool) (*T, error) {
	var out *T
	if err := runtime.BindQueryParameter("form", explode, false, name, values, &out); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "bind query", fmt.Errorf("parameter %q: %w", name, err))
	}
	return out, nil
}

// bindQuery stores an optional scalar parameter into dest when present.
func bindQuery[T any](values url.Values, name string, dest *T) error {
	v, err := queryParam[T](values, name, true)
	if err != nil {
		return err
	}
	if v != nil {
		*dest = *v
	}
	return nil
}

func bindQueryList(values url.Values, name string, dest *[]string) error {
	v, err := queryParam[[]string](values, name, false)
	if err != nil {
		return err
	}
	if v != nil {
		*dest = *v
	}
	return nil
}

func bindPage(values url.Values) (domain.Page, error) {
	var page domain.Page
	if err := bindQuery(values, "limit", &page.Limit); err != nil {
		return page, err
	}
	if err := bindQuery(values, "offset", &page.Offset); err != nil {
		return page, err
	}
	return page, nil
}

func itemIDFromPath(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse item id", fmt.Errorf("invalid item id %q", raw))
	}
	return id, nil
}

func hardDelete(values url.Values) (bool, error) {
	var hard bool
	if err := bindQuery(values, "hard", &hard); err != nil {
		return false, err
	}
	return hard, nil
}
