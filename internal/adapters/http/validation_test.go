package httpadapter

import (
	"net/http/httptest"
	"testing"
)

func TestRequestValidatorResolvesDocumentedRoutes(t *testing.T) {
	v, err := newRequestValidator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	cases := []struct {
		method string
		target string
	}{
		{"GET", "/v1/items?limit=10"},
		{"GET", "/v1/items/42"},
		{"POST", "/v1/items/search"},
		{"GET", "/v1/items/search/hybrid?query=x"},
		{"GET", "/v1/projects"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		route, _, err := v.router.FindRoute(req)
		if err != nil || route == nil {
			t.Fatalf("%s %s: expected documented route, got err=%v", tc.method, tc.target, err)
		}
	}
}
