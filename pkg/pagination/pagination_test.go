package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(t *testing.T, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxWithQuery(t, ""))
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.PageSize != DefaultPageSize {
		t.Errorf("expected page size %d, got %d", DefaultPageSize, p.PageSize)
	}
}

func TestFromContext_PageAndSize(t *testing.T) {
	p := FromContext(ctxWithQuery(t, "page=3&pageSize=10"))
	if p.Page != 3 || p.PageSize != 10 {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p.Offset())
	}
}

func TestFromContext_CapsPageSize(t *testing.T) {
	p := FromContext(ctxWithQuery(t, "pageSize=500"))
	if p.PageSize != MaxPageSize {
		t.Errorf("expected page size capped at %d, got %d", MaxPageSize, p.PageSize)
	}
}

func TestFromContext_LimitOffsetFallback(t *testing.T) {
	p := FromContext(ctxWithQuery(t, "limit=10&offset=30"))
	if p.PageSize != 10 {
		t.Errorf("expected page size 10, got %d", p.PageSize)
	}
	if p.Page != 4 {
		t.Errorf("expected page 4, got %d", p.Page)
	}
}

func TestParams_TotalPages(t *testing.T) {
	p := Params{Page: 1, PageSize: 20}
	cases := []struct {
		total, want int
	}{
		{0, 0}, {1, 1}, {20, 1}, {21, 2}, {40, 2}, {41, 3},
	}
	for _, tc := range cases {
		if got := p.TotalPages(tc.total); got != tc.want {
			t.Errorf("TotalPages(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestNewResponse(t *testing.T) {
	p := Params{Page: 2, PageSize: 20}
	resp := NewResponse([]string{"a"}, 45, p)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.TotalPages)
	}
	if !resp.HasMore {
		t.Error("expected has_more for page 2 of 3")
	}
	if resp.Page != 2 || resp.PageSize != 20 {
		t.Errorf("unexpected response paging: %+v", resp)
	}
}
