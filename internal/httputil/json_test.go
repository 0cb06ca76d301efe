package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"alice"}`))
		var p payload
		if err := ReadJSON(r, &p); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if p.Name != "alice" {
			t.Errorf("Name = %q", p.Name)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var p payload
		err := ReadJSON(r, &p)
		if err == nil || err.Error() != "request body is required" {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader("{"))
		var p payload
		if err := ReadJSON(r, &p); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestFail(t *testing.T) {
	w := httptest.NewRecorder()
	Fail(w, 400, "invalid amount")
	if w.Code != 400 {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"success":false`) || !strings.Contains(body, "invalid amount") {
		t.Errorf("body = %s", body)
	}
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, "done")
	if w.Code != 200 {
		t.Errorf("status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"success":true`) {
		t.Errorf("body = %s", body)
	}
}
