package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	if _, err := parseDate("2025-01-15T10:30:00Z"); err != nil {
		t.Errorf("RFC3339 rejected: %v", err)
	}

	d, err := parseDate("2025-01-15")
	if err != nil {
		t.Fatalf("plain date rejected: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.January || d.Day() != 15 {
		t.Errorf("parsed %v", d)
	}

	if _, err := parseDate("15/01/2025"); err == nil {
		t.Error("accepted unsupported format")
	}
	if _, err := parseDate(""); err == nil {
		t.Error("accepted empty date")
	}
}

func TestAuthCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	setAuthCookies(rec, "access-token-value", "refresh-token-value")

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access, ok := byName["accessToken"]
	if !ok {
		t.Fatal("accessToken cookie not set")
	}
	if access.Value != "access-token-value" {
		t.Errorf("accessToken = %q", access.Value)
	}
	if !access.HttpOnly || !access.Secure {
		t.Error("accessToken cookie must be HttpOnly and Secure")
	}

	refresh, ok := byName["refreshToken"]
	if !ok {
		t.Fatal("refreshToken cookie not set")
	}
	if !refresh.HttpOnly || !refresh.Secure {
		t.Error("refreshToken cookie must be HttpOnly and Secure")
	}
}

func TestClearAuthCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	clearAuthCookies(rec)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s not expired, MaxAge = %d", c.Name, c.MaxAge)
		}
		if c.Value != "" {
			t.Errorf("cookie %s still has value %q", c.Name, c.Value)
		}
	}
}
