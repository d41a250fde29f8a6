package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(newContext(t, "/"))

	if p.Page != 1 {
		t.Errorf("expected default page 1, got %d", p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(newContext(t, "/?page=3&limit=50"))

	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := FromContext(newContext(t, "/?limit=500"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}

	p = FromContext(newContext(t, "/?limit=0"))
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit for 0, got %d", p.Limit)
	}

	p = FromContext(newContext(t, "/?limit=-5"))
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit for negative input, got %d", p.Limit)
	}
}

func TestFromContext_FloorsPage(t *testing.T) {
	p := FromContext(newContext(t, "/?page=0"))
	if p.Page != 1 {
		t.Errorf("expected page floored at 1, got %d", p.Page)
	}

	p = FromContext(newContext(t, "/?page=-2"))
	if p.Page != 1 {
		t.Errorf("expected page floored at 1 for negative input, got %d", p.Page)
	}
}

func TestFromContext_MalformedValues(t *testing.T) {
	p := FromContext(newContext(t, "/?page=abc&limit=xyz"))

	if p.Page != 1 {
		t.Errorf("expected page 1 for malformed input, got %d", p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit for malformed input, got %d", p.Limit)
	}
}

func TestParams_Offset(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   int
	}{
		{"first page", Params{Page: 1, Limit: 10}, 0},
		{"second page", Params{Page: 2, Limit: 10}, 10},
		{"large page", Params{Page: 7, Limit: 25}, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 1, Limit: 10}, 25)

	if m.CurrentPage != 1 {
		t.Errorf("expected currentPage 1, got %d", m.CurrentPage)
	}
	if m.TotalPages != 3 {
		t.Errorf("expected totalPages 3, got %d", m.TotalPages)
	}
	if m.TotalRecords != 25 {
		t.Errorf("expected totalRecords 25, got %d", m.TotalRecords)
	}
	if !m.HasNextPage {
		t.Error("expected hasNextPage true on first of three pages")
	}
	if m.HasPrevPage {
		t.Error("expected hasPrevPage false on first page")
	}
}

func TestNewMeta_LastPage(t *testing.T) {
	m := NewMeta(Params{Page: 3, Limit: 10}, 25)

	if m.HasNextPage {
		t.Error("expected hasNextPage false on last page")
	}
	if !m.HasPrevPage {
		t.Error("expected hasPrevPage true on last page")
	}
}

func TestNewMeta_ExactMultiple(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 10}, 20)

	if m.TotalPages != 2 {
		t.Errorf("expected totalPages 2, got %d", m.TotalPages)
	}
	if m.HasNextPage {
		t.Error("expected hasNextPage false when total is an exact multiple")
	}
}

func TestNewMeta_EmptyResult(t *testing.T) {
	m := NewMeta(Params{Page: 1, Limit: 10}, 0)

	if m.TotalPages != 0 {
		t.Errorf("expected totalPages 0, got %d", m.TotalPages)
	}
	if m.HasNextPage {
		t.Error("expected hasNextPage false for empty result")
	}
	if m.HasPrevPage {
		t.Error("expected hasPrevPage false for empty result")
	}
}

func TestNewMeta_PagePastEnd(t *testing.T) {
	m := NewMeta(Params{Page: 9, Limit: 10}, 25)

	if m.TotalPages != 3 {
		t.Errorf("expected totalPages 3, got %d", m.TotalPages)
	}
	if m.TotalRecords != 25 {
		t.Errorf("expected totalRecords 25, got %d", m.TotalRecords)
	}
	if m.HasNextPage {
		t.Error("expected hasNextPage false past the end")
	}
	if !m.HasPrevPage {
		t.Error("expected hasPrevPage true past the end")
	}
}
