package prefs

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func assertPrefs(t *testing.T, got Prefs, wantURL string, wantN int) {
	t.Helper()
	if got.URL == nil || *got.URL != wantURL {
		t.Fatalf("URL = %v, want %q", got.URL, wantURL)
	}
	if got.Questions == nil || *got.Questions != wantN {
		t.Fatalf("Questions = %v, want %d", got.Questions, wantN)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if p := store.Restore(); p.URL != nil || p.Questions != nil {
		t.Fatalf("empty store restored %+v", p)
	}
	store.Save("https://github.com/a/b", 7)
	assertPrefs(t, store.Restore(), "https://github.com/a/b", 7)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	store := NewFileStore(path, nil)

	if p := store.Restore(); p.URL != nil || p.Questions != nil {
		t.Fatalf("missing file restored %+v", p)
	}

	store.Save("https://github.com/a/b", 12)
	assertPrefs(t, store.Restore(), "https://github.com/a/b", 12)
}

func TestFileStore_EmptyURLIsAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "prefs.yaml"), nil)
	store.Save("", 5)
	p := store.Restore()
	if p.URL != nil {
		t.Fatalf("URL = %q, want nil", *p.URL)
	}
	if p.Questions == nil || *p.Questions != 5 {
		t.Fatalf("Questions = %v, want 5", p.Questions)
	}
}

func TestFileStore_SwallowsFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Parent is a regular file, so both directions fail.
	store := NewFileStore(filepath.Join(blocker, "prefs.yaml"), nil)
	store.Save("https://github.com/a/b", 3)
	if p := store.Restore(); p.URL != nil || p.Questions != nil {
		t.Fatalf("Restore after failed save = %+v, want empty", p)
	}

	garbage := filepath.Join(dir, "garbage.yaml")
	if err := os.WriteFile(garbage, []byte(":\n\t- ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if p := NewFileStore(garbage, nil).Restore(); p.URL != nil || p.Questions != nil {
		t.Fatalf("Restore of corrupt file = %+v, want empty", p)
	}
}

func TestCookieJar_RoundTrip(t *testing.T) {
	jar := NewCookieJar([]byte("test-secret"), false, nil)

	rec := httptest.NewRecorder()
	jar.Bind(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil)).Save("https://github.com/a/b", 9)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("cookies = %+v, want one %q cookie", cookies, CookieName)
	}
	if !cookies[0].HttpOnly {
		t.Error("prefs cookie should be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assertPrefs(t, jar.Bind(nil, req).Restore(), "https://github.com/a/b", 9)
}

func TestCookieJar_RejectsForeignSignature(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookieJar([]byte("other"), false, nil).Bind(rec, nil).Save("https://github.com/a/b", 9)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	p := NewCookieJar([]byte("mine"), false, nil).Bind(nil, req).Restore()
	if p.URL != nil || p.Questions != nil {
		t.Fatalf("Restore with wrong key = %+v, want empty", p)
	}
}

func TestCookieJar_MissingOrGarbageCookie(t *testing.T) {
	jar := NewCookieJar([]byte("k"), false, nil)

	if p := jar.Bind(nil, httptest.NewRequest(http.MethodGet, "/", nil)).Restore(); p.URL != nil {
		t.Fatalf("Restore without cookie = %+v", p)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
	if p := jar.Bind(nil, req).Restore(); p.URL != nil || p.Questions != nil {
		t.Fatalf("Restore with garbage = %+v", p)
	}
}
