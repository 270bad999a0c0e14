package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolveIssuesTokenOnce(t *testing.T) {
	svc := NewService(time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	token := svc.Resolve(rec, req)
	if !Valid(token) {
		t.Fatalf("issued token %q is not valid", token)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != token {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req2.AddCookie(cookies[0])
	if got := svc.Resolve(rec2, req2); got != token {
		t.Fatalf("expected same token %q, got %q", token, got)
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatalf("expected no new cookie for known token")
	}
}

func TestResolveReplacesMalformedToken(t *testing.T) {
	svc := NewService(time.Hour)
	svc.newToken = func() string { return "fresh-token-1234" }

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "bad token!"})

	if got := svc.Resolve(rec, req); got != "fresh-token-1234" {
		t.Fatalf("expected fresh token, got %q", got)
	}
}

func TestLookupSources(t *testing.T) {
	svc := NewService(time.Hour)

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
		ok    bool
	}{
		{name: "none", setup: func(*http.Request) {}, ok: false},
		{name: "header", setup: func(r *http.Request) { r.Header.Set(HeaderName, "header-token-1") }, want: "header-token-1", ok: true},
		{name: "cookie wins", setup: func(r *http.Request) {
			r.Header.Set(HeaderName, "header-token-1")
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token-1"})
		}, want: "cookie-token-1", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			got, ok := svc.Lookup(req)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("expected (%q,%v), got (%q,%v)", tt.want, tt.ok, got, ok)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/ws?sessionId=query-token-1", nil)
	if got, ok := svc.Lookup(req); !ok || got != "query-token-1" {
		t.Fatalf("expected query token, got %q", got)
	}
}

func TestOwns(t *testing.T) {
	if !Owns("abc-12345", "abc-12345") {
		t.Fatalf("expected owner match")
	}
	if Owns("abc-12345", "other-1234") || Owns("", "") || Owns("abc-12345", "") {
		t.Fatalf("expected mismatch")
	}
}
