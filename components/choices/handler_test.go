package choices

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-laptopprice/pkg/dataset"
)

type handlerResponse struct {
	Field string   `json:"field"`
	Data  []Option `json:"data"`
}

var testChoices = dataset.Choices{
	"company": {"Acer", "Apple", "Asus", "Dell", "HP", "Lenovo"},
	"ram":     {"2", "4", "6", "8", "12", "16", "24", "32", "64"},
}

func serve(t *testing.T, target string, method string, fns ...OptionFn) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	fns = append([]OptionFn{WithChoices(testChoices)}, fns...)
	if _, err := RegisterRoutes(mux, "", fns...); err != nil {
		t.Fatalf("register: %v", err)
	}
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handlerResponse {
	t.Helper()
	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestHandler_EmptyQueryReturnsTopOfList(t *testing.T) {
	rec := serve(t, "/api/choices/ram?limit=3", http.MethodGet)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	payload := decode(t, rec)
	if payload.Field != "ram" {
		t.Fatalf("unexpected field %q", payload.Field)
	}
	if len(payload.Data) != 3 || payload.Data[0].Value != "2" || payload.Data[2].Value != "6" {
		t.Fatalf("unexpected data %#v", payload.Data)
	}
}

func TestHandler_EmptySearchNone(t *testing.T) {
	rec := serve(t, "/api/choices/company", http.MethodGet, WithEmptySearchMode(EmptySearchNone))

	payload := decode(t, rec)
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_SearchPrefersPrefix(t *testing.T) {
	rec := serve(t, "/api/choices/company?q=L", http.MethodGet)

	payload := decode(t, rec)
	got := make([]string, len(payload.Data))
	for i, option := range payload.Data {
		got[i] = option.Value
	}
	want := []string{"Lenovo", "Apple", "Dell"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHandler_LimitClamped(t *testing.T) {
	rec := serve(t, "/api/choices/ram?limit=100", http.MethodGet, WithMaxLimit(2))

	if payload := decode(t, rec); len(payload.Data) != 2 {
		t.Fatalf("expected 2 results, got %#v", payload.Data)
	}
}

func TestHandler_UnknownField(t *testing.T) {
	rec := serve(t, "/api/choices/weight", http.MethodGet)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	rec := serve(t, "/api/choices/ram", http.MethodHead)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestHandler_GuardRejects(t *testing.T) {
	rec := serve(t, "/api/choices/ram", http.MethodGet, WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandlerWithOptions_MethodNotAllowed(t *testing.T) {
	h := Handler(WithChoices(testChoices))

	req := httptest.NewRequest(http.MethodPost, "/api/choices/ram", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") == "" {
		t.Fatalf("expected Allow header")
	}
}
